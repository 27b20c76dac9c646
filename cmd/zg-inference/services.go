package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shamank/zg-compute-go/pkg/blockchain"
)

const servicesLongDesc string = `List services registered in the serving contract.

With --check every provider's proxy is probed through its /models route and
the result is shown next to the listing.

Examples:
  zg-inference services
  zg-inference services --check`

const servicesShortDesc string = "List registered inference services"

// healthchecker is implemented by brokers able to probe a provider.
type healthchecker interface {
	Healthcheck(ctx context.Context, provider string) (map[string]any, error)
}

type servicesCommander struct {
	root  *rootCommander
	check bool
}

func newServicesCmd(root *rootCommander) *cobra.Command {
	cmder := &servicesCommander{root: root}

	cmd := &cobra.Command{
		Use:   "services",
		Short: servicesShortDesc,
		Long:  servicesLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.check, "check", false, "Probe each provider's proxy")

	return cmd
}

func (c *servicesCommander) run(ctx context.Context, cmd *cobra.Command) error {
	broker, err := c.root.open()
	if err != nil {
		return err
	}
	defer broker.Close()

	services, err := broker.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("could not list services: %w", err)
	}
	if len(services) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No services registered.")
		return nil
	}

	var hc healthchecker
	if c.check {
		var ok bool
		if hc, ok = broker.(healthchecker); !ok {
			return fmt.Errorf("broker does not support health checks")
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	header := "PROVIDER\tTYPE\tMODEL\tURL\tINPUT\tOUTPUT"
	if c.check {
		header += "\tSTATUS"
	}
	fmt.Fprintln(w, header)

	for _, s := range services {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
			s.Provider.Hex(), s.ServiceType, s.Model, s.URL,
			blockchain.NeuronToA0GI(s.InputPrice).String(),
			blockchain.NeuronToA0GI(s.OutputPrice).String())
		if hc != nil {
			status := "up"
			if _, err := hc.Healthcheck(ctx, s.Provider.Hex()); err != nil {
				status = "down: " + err.Error()
			}
			line += "\t" + status
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
