package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// Render renders the configured networks
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in sling.toml [networks]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable()
	t.AppendHeader(table.Row{"", "Network", "Chain ID", "RPC", "Explorer"})
	for _, network := range result.Networks {
		marker := ""
		if network.Name == result.Default {
			marker = color.New(color.FgGreen).Sprint("*")
		}
		if network.Error != nil {
			t.AppendRow(table.Row{marker, network.Name, color.New(color.FgRed).Sprintf("error: %v", network.Error), "", ""})
			continue
		}
		explorer := network.Explorer
		if explorer == "" {
			explorer = color.New(color.FgHiBlack).Sprint("none")
		}
		t.AppendRow(table.Row{marker, network.Name, network.ChainID, network.EndpointURL, explorer})
	}
	fmt.Fprintln(r.out, t.Render())

	if result.Default != "" {
		fmt.Fprintf(r.out, "\n* default network\n")
	}
	return nil
}

var _ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
