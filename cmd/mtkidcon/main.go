// mtkidcon - Mikrotik kid-control bandwidth collector
//
// mtkidcon ingests the periodic bandwidth reports a Mikrotik router's
// kid-control feature emits and stores them as a deduplicated time
// series in a local SQLite database.
package main

import (
	"os"

	"github.com/bernardjech/mtkidcon/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
