package main

import (
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/opengovern/ratelimits"
)

const envPrefix = "RATELIMITS"

// now is the clock behind every parse. Tests pin it.
var now = time.Now

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "ratelimits",
		Short: "Inspect HTTP rate-limit headers",
		Long: `ratelimits detects which rate-limit convention a response follows
(IETF RateLimit drafts, GitHub, GitLab, Twitter, Reddit, Vimeo, Akamai,
Docker Hub, OpenAI, Anthropic) and prints limit, remaining and reset.

Every flag can also be set from the environment, e.g. RATELIMITS_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, v); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(v.GetString("log-level"))
			if err != nil {
				return errors.Wrap(err, "invalid --log-level")
			}
			logrus.SetOutput(cmd.ErrOrStderr())
			logrus.SetLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().Bool("json", false, "print the result as JSON")
	cmd.PersistentFlags().String("vendor", "", "read headers with this convention instead of detecting it")
	cmd.PersistentFlags().String("log-level", "warn", "logrus level: debug, info, warn, error")

	cmd.AddCommand(newParseCmd(v), newFetchCmd(v), newRegistryCmd(v))
	return cmd
}

// bindFlags makes every flag of cmd, inherited ones included, readable
// through v so that environment variables fill in unset flags.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

func newParser(v *viper.Viper) (*ratelimits.Parser, error) {
	vendor, err := forcedVendor(v)
	if err != nil {
		return nil, err
	}
	return ratelimits.NewParser(ratelimits.Config{Now: now, Vendor: vendor}), nil
}

func forcedVendor(v *viper.Viper) (ratelimits.Vendor, error) {
	name := strings.ToLower(strings.TrimSpace(v.GetString("vendor")))
	if name == "" {
		return ratelimits.VendorUnknown, nil
	}
	vendor, ok := ratelimits.ParseVendor(name)
	if !ok || vendor == ratelimits.VendorUnknown {
		return ratelimits.VendorUnknown, errors.Errorf("unknown vendor %q", name)
	}
	return vendor, nil
}
