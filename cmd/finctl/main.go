/*Command line access to a user's finances*/
package main

import (
	"github.com/alecthomas/kong"
)

// cli commands / args available
var cli struct {
	Ctx context `embed:""`

	Summary  summaryCmd  `cmd:"" help:"Print the monthly summary."`
	Insights insightsCmd `cmd:"" help:"Print spending insights."`
	Report   reportCmd   `cmd:"" help:"Print the period report."`
	Alert    alertCmd    `cmd:"" help:"Show the spending alert status."`
	Export   exportCmd   `cmd:"" help:"Export every transaction of the user."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("finctl"),
		kong.Description("Inspect and export Equilibra data."),
	)
	err := ctx.Run(&cli.Ctx)
	ctx.FatalIfErrorf(err)
}
