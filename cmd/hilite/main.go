// Command hilite anchors text highlights to HTML documents and re-applies
// them across document edits.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/hilite-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hilite-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/hilite-cli/internal/core/services"
)

func main() {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open config: %v\n", err)
		os.Exit(1)
	}

	cli.SetSettingsService(services.NewSettingsService(configStore))

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
