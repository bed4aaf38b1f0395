// Package main - test_runner.go
// Executable to run the scripted playthrough suite against the station.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/outpost31/simulator/test"
)

func main() {
	verbose := flag.Bool("v", false, "Print session log output")
	flag.Parse()

	fmt.Println("OUTPOST 31 - PLAYTHROUGH SUITE")
	fmt.Println(strings.Repeat("=", 60))

	var out io.Writer = io.Discard
	if *verbose {
		out = os.Stdout
	}

	suite, err := test.NewSuite(out)
	if err != nil {
		fmt.Println("Node table rejected: " + err.Error())
		os.Exit(1)
	}
	suite.Run(context.Background(), test.Scenarios())

	passed := 0
	failed := 0
	for _, r := range suite.GetResults() {
		mark := "PASS"
		if r.Passed {
			passed++
		} else {
			failed++
			mark = "FAIL"
		}
		fmt.Printf("[%s] %-36s %2d steps  %s\n", mark, r.ScenarioName, r.Steps, r.Reason)
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   Passed: %d\n", passed)
	fmt.Printf("   Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\nNode table needs attention")
		os.Exit(1)
	}
	fmt.Println("\nStation ready")
}
