package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/icidkit/icid/app"
	"github.com/icidkit/icid/app/logger"
	"github.com/icidkit/icid/candid"
	"github.com/icidkit/icid/candid/candidfetch"
	"github.com/icidkit/icid/config"
	"github.com/icidkit/icid/identity"
	"github.com/icidkit/icid/inspector"
	"github.com/icidkit/icid/metric"
	"github.com/icidkit/icid/principal"
	"github.com/icidkit/icid/util/crypto"
)

type cli struct {
	in  io.Reader
	out io.Writer

	configPath string
	logLevels  string
	strict     bool
	generate   bool
	words      int

	a *app.App
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}
	root := &cobra.Command{
		Use:          "icid",
		Short:        "Derive identities and inspect canister interfaces",
		SilenceUsage: true,
		Version:      app.VersionDescription(),
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&c.logLevels, "log", "", `log levels, e.g. "candid*=DEBUG;WARN"`)

	root.AddCommand(
		c.mnemonicCmd(),
		c.deriveCmd(),
		c.principalCmd(),
		c.candidCmd(),
		c.inspectCmd(),
	)
	return root
}

// start loads the config and starts the components every command shares.
func (c *cli) start(cmd *cobra.Command) (err error) {
	conf := &config.Config{}
	if c.configPath != "" {
		if conf, err = config.NewFromFile(c.configPath); err != nil {
			return fmt.Errorf("can't open config file: %w", err)
		}
	} else {
		conf.Log = logger.DefaultConfig()
	}
	if c.logLevels != "" {
		conf.Log.Levels = logger.LevelsFromStr(c.logLevels)
	}
	conf.Log.ApplyGlobal()

	var deriverOpts []identity.Option
	if c.generate {
		deriverOpts = append(deriverOpts, identity.WithEntropySource(identity.NewRandomSource(rand.Reader, c.words)))
	}
	var parseOpts []candid.Option
	if c.strict {
		parseOpts = append(parseOpts, candid.WithRejectDuplicates())
	}

	c.a = new(app.App)
	c.a.Register(conf).
		Register(metric.New()).
		Register(identity.New(deriverOpts...)).
		Register(candidfetch.New()).
		Register(inspector.New(parseOpts...))
	if err = c.a.Start(cmd.Context()); err != nil {
		return err
	}
	log.Debug("app started", zap.String("version", c.a.Version()), zap.String("command", cmd.Name()))
	return nil
}

func (c *cli) stop() error {
	if c.a == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return c.a.Close(ctx)
}

// withApp wraps a command body with app start and stop.
func (c *cli) withApp(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if err = c.start(cmd); err != nil {
			return err
		}
		defer func() {
			if cErr := c.stop(); cErr != nil && err == nil {
				err = cErr
			}
		}()
		return run(cmd, args)
	}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) mnemonicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Recovery phrase helpers",
	}
	var words int
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new recovery phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase, err := crypto.NewMnemonicGenerator().WithWordCount(words)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, phrase)
			return err
		},
	}
	newCmd.Flags().IntVarP(&words, "words", "w", 24, "number of words: 12, 15, 18, 21 or 24")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a recovery phrase read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase, err := c.readPhrase()
			if err != nil {
				return err
			}
			if err = phrase.Validate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "ok, %d words\n", phrase.WordCount())
			return err
		},
	}
	cmd.AddCommand(newCmd, validateCmd)
	return cmd
}

func (c *cli) readPhrase() (crypto.Mnemonic, error) {
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return crypto.Mnemonic(line).Normalized(), nil
}

func (c *cli) deriveCmd() *cobra.Command {
	var alg string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive an identity from a recovery phrase read from stdin",
		Long: "Derive an identity from a recovery phrase read from stdin.\n" +
			"With --generate and empty input a new phrase is generated and printed along with the identity.",
		Args: cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, args []string) error {
			a, err := crypto.ParseAlgorithm(alg)
			if err != nil {
				return err
			}
			var phrase crypto.Mnemonic
			if !c.generate {
				if phrase, err = c.readPhrase(); err != nil {
					return err
				}
			}
			deriver := app.MustComponent[*identity.Deriver](c.a)
			data, used, err := deriver.Derive(a, phrase)
			if err != nil {
				return err
			}
			out := struct {
				identity.Data
				Mnemonic string `json:"mnemonic,omitempty"`
			}{Data: data}
			if phrase == "" {
				out.Mnemonic = string(used)
			}
			return c.printJSON(out)
		}),
	}
	cmd.Flags().StringVarP(&alg, "alg", "a", crypto.Ed25519.String(), "key algorithm: ed25519 or secp256k1")
	cmd.Flags().BoolVar(&c.generate, "generate", false, "generate a new phrase instead of reading one")
	cmd.Flags().IntVarP(&c.words, "words", "w", 24, "words in a generated phrase")
	return cmd
}

func (c *cli) principalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "principal",
		Short: "Principal helpers",
	}
	var alg string
	fromKeyCmd := &cobra.Command{
		Use:   "from-key <public-key-base64>",
		Short: "Compute the principal of a raw public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := crypto.ParseAlgorithm(alg)
			if err != nil {
				return err
			}
			raw, err := crypto.DecodeBytesFromString(args[0])
			if err != nil {
				return fmt.Errorf("%w: %v", crypto.ErrInvalidKey, err)
			}
			text, err := identity.PrincipalFromPublicKey(a, raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, text)
			return err
		},
	}
	fromKeyCmd.Flags().StringVarP(&alg, "alg", "a", crypto.Ed25519.String(), "key algorithm: ed25519 or secp256k1")

	infoCmd := &cobra.Command{
		Use:   "info <principal>",
		Short: "Decode a principal text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := principal.FromText(args[0])
			if err != nil {
				return err
			}
			return c.printJSON(map[string]any{
				"text":  p.String(),
				"class": p.Class().String(),
				"bytes": hex.EncodeToString(p.Bytes()),
			})
		},
	}
	cmd.AddCommand(fromKeyCmd, infoCmd)
	return cmd
}

func (c *cli) candidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candid",
		Short: "Interface description helpers",
	}
	parseCmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse interface text from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(c.in)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			var opts []candid.Option
			if c.strict {
				opts = append(opts, candid.WithRejectDuplicates())
			}
			iface, err := candid.Parse(string(data), opts...)
			if err != nil {
				return err
			}
			return c.printJSON(iface)
		},
	}
	parseCmd.Flags().BoolVar(&c.strict, "strict", false, "reject duplicate method names")

	var endpoint string
	fetchCmd := &cobra.Command{
		Use:   "fetch <canister-id>",
		Short: "Fetch the interface text of a canister",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(func(cmd *cobra.Command, args []string) error {
			fetcher := c.a.MustComponent(candidfetch.CName).(candidfetch.Fetcher)
			text, err := fetcher.Fetch(cmd.Context(), args[0], endpoint)
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.out, strings.TrimRight(text, "\n")+"\n")
			return err
		}),
	}
	fetchCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "override the configured endpoint")
	cmd.AddCommand(parseCmd, fetchCmd)
	return cmd
}

func (c *cli) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <canister-id>...",
		Short: "Fetch and parse the interfaces of canisters",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.withApp(func(cmd *cobra.Command, args []string) error {
			insp := c.a.MustComponent(inspector.CName).(inspector.Inspector)
			results, err := insp.InspectMany(cmd.Context(), args)
			type entry struct {
				Address   string            `json:"address"`
				Interface *candid.Interface `json:"interface,omitempty"`
				Error     string            `json:"error,omitempty"`
			}
			out := make([]entry, 0, len(results))
			for _, r := range results {
				e := entry{Address: r.Address, Interface: r.Interface}
				if r.Err != nil {
					e.Error = r.Err.Error()
				}
				out = append(out, e)
			}
			if pErr := c.printJSON(out); pErr != nil {
				return pErr
			}
			return err
		}),
	}
	cmd.Flags().BoolVar(&c.strict, "strict", false, "reject duplicate method names")
	return cmd
}
