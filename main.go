// sp7tree imports, merges and deduplicates tree data of a Specify 7
// collection through its REST API.
package main

import "github.com/gnames/sp7tree/cmd"

func main() {
	cmd.Execute()
}
