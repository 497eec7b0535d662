package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/infrastructure/qrcode"
	totpGen "github.com/nguyenquy0710/Financial-Tracking-sub001/internal/infrastructure/totp"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/otp"
)

// errCodeRejected makes verify exit non-zero without an error message
var errCodeRejected = errors.New("code rejected")

type codeFlags struct {
	algorithm string
	digits    int
	period    int
}

func (f *codeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.algorithm, "algorithm", "a", "SHA1", "HMAC algorithm: SHA1, SHA256 or SHA512")
	cmd.Flags().IntVarP(&f.digits, "digits", "d", otp.DefaultDigits, "Code length")
	cmd.Flags().IntVarP(&f.period, "period", "p", otp.DefaultPeriod, "Time step in seconds")
}

func (f *codeFlags) options() (otp.Options, error) {
	alg, err := otp.ParseAlgorithm(f.algorithm)
	if err != nil {
		return otp.Options{}, err
	}
	return otp.Options{Algorithm: alg, Digits: f.digits, Period: f.period}, nil
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "otpctl",
		Short:         "Generate and inspect TOTP/HOTP codes",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return nil
			}
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML file mapping account names to secrets or otpauth URIs")

	root.AddCommand(
		newCodeCmd(v),
		newVerifyCmd(v),
		newParseCmd(),
		newImportCmd(),
		newNewCmd(),
	)
	return root
}

// resolveSecret looks arg up in the config file first. Config values may be
// raw secrets or otpauth URIs; URIs also supply the generation options.
func resolveSecret(v *viper.Viper, arg string, flags *codeFlags) (string, otp.Options, error) {
	opts, err := flags.options()
	if err != nil {
		return "", otp.Options{}, err
	}
	value := arg
	if configured := v.GetString(arg); configured != "" {
		value = configured
	}
	if !strings.HasPrefix(value, "otpauth://") {
		return value, opts, nil
	}
	p, err := otp.ParseURI(value)
	if err != nil {
		return "", otp.Options{}, err
	}
	uriOpts, err := p.Options()
	if err != nil {
		return "", otp.Options{}, err
	}
	return p.Secret, uriOpts, nil
}

func newCodeCmd(v *viper.Viper) *cobra.Command {
	var flags codeFlags
	var at int64

	cmd := &cobra.Command{
		Use:   "code <secret|name>",
		Short: "Print the current TOTP code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, opts, err := resolveSecret(v, args[0], &flags)
			if err != nil {
				return err
			}
			now := time.Now()
			if cmd.Flags().Changed("at") {
				now = time.Unix(at, 0)
			}
			code, err := otp.GenerateAt(secret, opts, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%ds left)\n", code.Code, code.TimeRemaining)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64VarP(&at, "at", "t", 0, "Unix timestamp to generate for instead of now")
	return cmd
}

func newVerifyCmd(v *viper.Viper) *cobra.Command {
	var flags codeFlags
	var skew uint

	cmd := &cobra.Command{
		Use:   "verify <secret|name> <code>",
		Short: "Check a TOTP code; exits 1 when it does not match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, opts, err := resolveSecret(v, args[0], &flags)
			if err != nil {
				return err
			}
			ok, err := otp.Validate(secret, args[1], opts, time.Now(), skew)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				cmd.SilenceErrors = true
				return errCodeRejected
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().UintVarP(&skew, "skew", "s", 1, "Accepted time steps before and after now")
	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <otpauth-uri>",
		Short: "Print the fields of an otpauth:// URI as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := otp.ParseURI(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <otpauth-migration-uri>",
		Short: "Convert an authenticator export into otpauth:// URIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := otp.ParseMigrationURI(args[0])
			if err != nil {
				return err
			}
			for i := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), entries[i].String())
			}
			return nil
		},
	}
}

func newNewCmd() *cobra.Command {
	var flags codeFlags
	var issuer, account string
	var showQR bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a random secret and its otpauth:// URI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			result, err := totpGen.Generate(issuer, account, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "secret: %s\nuri:    %s\n", result.Secret, result.OTPAuthURL)
			if showQR {
				qr, err := qrcode.NewEncoder().Terminal(result.OTPAuthURL)
				if err != nil {
					return err
				}
				fmt.Fprint(out, qr)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&issuer, "issuer", "i", "Financial Tracking", "Issuer shown in the authenticator app")
	cmd.Flags().StringVar(&account, "account", "", "Account name, usually an email")
	cmd.Flags().BoolVar(&showQR, "qr", false, "Also print a QR code to the terminal")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
