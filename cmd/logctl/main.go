// Program logctl calls the log procedures of a running logbridge server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"

	"logbridge/internal/bridge"
	"logbridge/internal/errdesc"
	"logbridge/internal/level"
	"logbridge/internal/rpc"
)

const (
	flagGRPC     = "grpc"
	flagTimeout  = "timeout"
	flagContext  = "context"
	flagData     = "data"
	flagErrName  = "error-name"
	flagErrMsg   = "error-message"
	flagErrStack = "error-stack"

	defaultGRPC    = ":13100"
	defaultTimeout = 5 * time.Second
)

// connectFunc returns a Caller for addr and a function releasing it.
type connectFunc func(addr string) (rpc.Caller, func(), error)

func dialGRPC(addr string) (rpc.Caller, func(), error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, errors.Wrap(err, "dial")
	}
	return rpc.NewClient(conn), func() { _ = conn.Close() }, nil
}

func main() {
	if err := newRootCmd(os.Stdout, dialGRPC).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer, connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:          "logctl",
		Short:        "Call logbridge log procedures",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().String(flagGRPC, defaultGRPC, "logbridge gRPC address")
	root.PersistentFlags().Duration(flagTimeout, defaultTimeout, "call timeout")

	withClient := func(cmd *cobra.Command, fn func(ctx context.Context, c *bridge.Client) error) error {
		addr, _ := cmd.Flags().GetString(flagGRPC)
		timeout, _ := cmd.Flags().GetDuration(flagTimeout)
		caller, release, err := connect(addr)
		if err != nil {
			return err
		}
		defer release()
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return fn(ctx, bridge.NewClient(caller))
	}

	for _, lv := range level.All {
		root.AddCommand(newSeverityCmd(lv, withClient))
	}

	root.AddCommand(&cobra.Command{
		Use:   "set-level <level>",
		Short: "Set the server log level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lv, err := level.Parse(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *bridge.Client) error {
				return c.SetLevel(ctx, lv)
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get-level",
		Short: "Print the server log level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *bridge.Client) error {
				res, err := c.GetLevel(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", res.LevelName, int(res.Level))
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "procedures",
		Short: "Print the log procedure table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeProcedures(cmd.OutOrStdout(), bridge.New(bridge.NewHandle(bridge.NewDefaultLogger())).Procedures())
		},
	})
	return root
}

func newSeverityCmd(lv level.Level, withClient func(*cobra.Command, func(context.Context, *bridge.Client) error) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   strings.ToLower(lv.String()) + " <message>",
		Short: "Log a message at " + lv.String() + " level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := logOptions(cmd)
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *bridge.Client) error {
				return c.Log(ctx, lv, args[0], opts...)
			})
		},
	}
	cmd.Flags().String(flagContext, "", "context label")
	cmd.Flags().String(flagData, "", "structured data as a JSON object")
	cmd.Flags().String(flagErrName, "", "error name")
	cmd.Flags().String(flagErrMsg, "", "error message")
	cmd.Flags().String(flagErrStack, "", "error stack")
	return cmd
}

// logOptions turns the flags that were set into options; unset flags leave
// the corresponding field absent.
func logOptions(cmd *cobra.Command) ([]bridge.LogOption, error) {
	var opts []bridge.LogOption
	f := cmd.Flags()
	if f.Changed(flagContext) {
		v, _ := f.GetString(flagContext)
		opts = append(opts, bridge.WithContext(v))
	}
	if f.Changed(flagData) {
		raw, _ := f.GetString(flagData)
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, errors.Wrap(err, "--data")
		}
		if data == nil {
			return nil, errors.New("--data must be a JSON object")
		}
		opts = append(opts, bridge.WithData(data))
	}
	if f.Changed(flagErrName) || f.Changed(flagErrMsg) || f.Changed(flagErrStack) {
		d := errdesc.Descriptor{Name: errdesc.DefaultName}
		if f.Changed(flagErrName) {
			d.Name, _ = f.GetString(flagErrName)
		}
		d.Message, _ = f.GetString(flagErrMsg)
		if f.Changed(flagErrStack) {
			s, _ := f.GetString(flagErrStack)
			d.Stack = &s
		}
		opts = append(opts, bridge.WithDescriptor(d))
	}
	return opts, nil
}

type procedureDoc struct {
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
	Input       any    `yaml:"input,omitempty"`
	Output      any    `yaml:"output,omitempty"`
}

func writeProcedures(w io.Writer, procs []rpc.Procedure) error {
	docs := make([]procedureDoc, 0, len(procs))
	for _, p := range procs {
		d := procedureDoc{Path: p.Path.String(), Description: p.Meta.Description}
		if p.Input != nil {
			if err := json.Unmarshal([]byte(p.Input.Source()), &d.Input); err != nil {
				return errors.Wrapf(err, "%s input schema", p.Path)
			}
		}
		if p.Output != nil {
			if err := json.Unmarshal([]byte(p.Output.Source()), &d.Output); err != nil {
				return errors.Wrapf(err, "%s output schema", p.Path)
			}
		}
		docs = append(docs, d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return err
	}
	return enc.Close()
}
