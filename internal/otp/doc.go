// Package otp implements HOTP (RFC 4226) and TOTP (RFC 6238) code generation
// and parsing of otpauth:// provisioning URIs as found in authenticator QR codes.
//
// Every function is pure with respect to its inputs. The only clock read is in
// Generate and Generator.Now; all other entry points take the time explicitly.
package otp
