// Command sunspot is a small CLI for querying the JPL Horizons service
// directly, without running the sunspotd daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/indigo-pc/sunspot/internal/ephemeris"
	"github.com/indigo-pc/sunspot/internal/horizons"
)

var (
	flagEndpoint string
	flagStart    string
	flagStop     string
	flagSite     string
	flagStep     string
	flagTarget   string
	flagQuants   string
)

var rootCmd = &cobra.Command{
	Use:   "sunspot",
	Short: "Query JPL Horizons ephemerides from the command line",
	Long: `sunspot fetches an observer-table ephemeris from the NASA/JPL Horizons
service and answers column-oriented questions about it.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEndpoint, "endpoint", "", "Horizons API endpoint (default: public API)")
	pf.StringVar(&flagStart, "start", "", "observation start, 'YYYY-MM-DD HH:MM:SS'")
	pf.StringVar(&flagStop, "stop", "", "observation stop, 'YYYY-MM-DD HH:MM:SS'")
	pf.StringVar(&flagSite, "site", "", "observer site, 'lat,lon,elev_km'")
	pf.StringVar(&flagStep, "step", "1 h", "step size, '<n> <unit>'")
	pf.StringVar(&flagTarget, "target", "", "target body identifier")
	pf.StringVar(&flagQuants, "quantities", "", "comma-separated quantity codes (default "+horizons.DefaultQuantities+")")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(correspondCmd)
}

// fetchTable runs the full fetch-and-parse pipeline for the flag-supplied
// query.
func fetchTable() (*ephemeris.Table, error) {
	for _, f := range []struct{ name, value string }{
		{"start", flagStart},
		{"stop", flagStop},
		{"site", flagSite},
		{"target", flagTarget},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("--%s is required", f.name)
		}
	}

	client := horizons.NewClient(flagEndpoint)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	raw, err := client.Fetch(ctx, horizons.Query{
		StartTime:        flagStart,
		StopTime:         flagStop,
		ObserverLocation: flagSite,
		StepSize:         flagStep,
		TargetBody:       flagTarget,
		Quantities:       flagQuants,
	})
	if err != nil {
		return nil, err
	}
	return ephemeris.Parse(raw)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
