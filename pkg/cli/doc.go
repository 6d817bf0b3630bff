/*
Package cli provides command-line helpers used by the aimend command.

Output Formatting:

Commands print either aligned text or JSON:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, cli.Fields{
		{Key: "version", Value: version},
	})

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, cancel := cli.SetupSignalHandler(context.Background())
	defer cancel()

Exit Codes:

ExitCode maps command errors to the process status: 2 for configuration
errors, 3 when the gateway rejected a signed request, 1 otherwise.
*/
package cli
