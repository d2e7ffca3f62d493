package main

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"oras.land/oras-go/v2/registry"
	orasremote "oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/opengovern/ratelimits"
	"github.com/opengovern/ratelimits/adapters"
)

const (
	clientGGCR = "ggcr"
	clientORAS = "oras"
)

func newRegistryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry REF",
		Short: "Report the pull quota of a container registry",
		Long: `Registry resolves an image manifest with a HEAD request, which does not
count as a pull on Docker Hub, and prints the quota headers the registry sent.

The ggcr client understands Docker Hub short names such as "alpine". The oras
client needs the full registry host, e.g. registry-1.docker.io/library/alpine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistry(cmd.Context(), cmd.OutOrStdout(), v, args[0])
		},
	}

	cmd.Flags().String("client", clientGGCR, "registry client: ggcr or oras")
	cmd.Flags().String("username", "", "registry user; the docker keychain is used when empty")
	cmd.Flags().String("password", "", "registry password or access token")
	cmd.Flags().Bool("insecure", false, "talk plain HTTP to the registry")
	return cmd
}

// manifestProbe records the rate limit of the manifest response. Token and
// ping requests made on the way are ignored.
type manifestProbe struct {
	rl   ratelimits.RateLimit
	err  error
	seen bool
}

func (p *manifestProbe) hook(req *http.Request, _ *http.Response, rl ratelimits.RateLimit, err error) {
	if strings.Contains(req.URL.Path, "/manifests/") {
		p.rl, p.err, p.seen = rl, err, true
	}
}

func runRegistry(ctx context.Context, out io.Writer, v *viper.Viper, ref string) error {
	parser, err := newParser(v)
	if err != nil {
		return err
	}

	probe := &manifestProbe{}
	observer := &adapters.Transport{
		Base:   remote.DefaultTransport,
		Logger: logrus.StandardLogger(),
		Hook:   probe.hook,
	}
	if v.GetString("vendor") != "" {
		observer.Parser = parser
	}

	switch client := v.GetString("client"); client {
	case clientGGCR:
		err = headGGCR(ctx, v, ref, observer)
	case clientORAS:
		err = headORAS(ctx, v, ref, observer)
	default:
		return errors.Errorf("unknown registry client %q", client)
	}
	if err != nil {
		return err
	}

	if !probe.seen {
		return errors.Errorf("registry sent no manifest response for %s", ref)
	}
	if probe.err != nil {
		return probe.err
	}
	return render(out, probe.rl, now(), v.GetBool("json"))
}

func headGGCR(ctx context.Context, v *viper.Viper, ref string, rt http.RoundTripper) error {
	var nameOpts []name.Option
	if v.GetBool("insecure") {
		nameOpts = append(nameOpts, name.Insecure)
	}
	parsed, err := name.ParseReference(ref, nameOpts...)
	if err != nil {
		return errors.Wrapf(err, "invalid image reference %s", ref)
	}

	opts := []remote.Option{remote.WithContext(ctx), remote.WithTransport(rt)}
	if user := v.GetString("username"); user != "" {
		opts = append(opts, remote.WithAuth(&authn.Basic{Username: user, Password: v.GetString("password")}))
	} else {
		opts = append(opts, remote.WithAuthFromKeychain(authn.DefaultKeychain))
	}

	desc, err := remote.Head(parsed, opts...)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", parsed)
	}
	logrus.WithField("digest", desc.Digest.String()).Debugf("resolved %s", parsed)
	return nil
}

func headORAS(ctx context.Context, v *viper.Viper, ref string, rt http.RoundTripper) error {
	parsed, err := registry.ParseReference(ref)
	if err != nil {
		return errors.Wrapf(err, "invalid artifact reference %s", ref)
	}
	if parsed.Reference == "" {
		parsed.Reference = "latest"
	}

	repo, err := orasremote.NewRepository(parsed.String())
	if err != nil {
		return errors.Wrapf(err, "open repository %s", parsed)
	}
	repo.PlainHTTP = v.GetBool("insecure")

	cred := auth.EmptyCredential
	if user := v.GetString("username"); user != "" {
		cred = auth.Credential{Username: user, Password: v.GetString("password")}
	}
	repo.Client = &auth.Client{
		Client:     &http.Client{Transport: rt},
		Cache:      auth.NewCache(),
		Credential: auth.StaticCredential(parsed.Registry, cred),
	}

	desc, err := repo.Resolve(ctx, parsed.Reference)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", parsed)
	}
	logrus.WithField("digest", desc.Digest.String()).Debugf("resolved %s", parsed)
	return nil
}
