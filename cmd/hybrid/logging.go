// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package main

import (
	"github.com/urfave/cli"

	"github.com/gviegas/hybrid/log"
)

var logger = log.New("hybrid")

func setupLogging(ctx *cli.Context) error {
	n := 0
	if ctx.GlobalBool("v") {
		n = 1
	}
	if ctx.GlobalBool("vv") {
		n = 2
	}
	log.SetLevel(log.Verbosity(n))
	return nil
}
