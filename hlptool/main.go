// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/hlptool/dbin"
	"github.com/xtaci/hlptool/redstone"
	"github.com/xtaci/hlptool/solver"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// add more log flags for debugging
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "hlptool"
	myApp.Usage = "find optimal hex layer and 2bin comparator chains"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "verbosity,V",
			Value: 1,
			Usage: "set output verbosity from 0 (quiet) to 4 (debug)",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when the value is not empty, the config path must exists
			Usage: "config from json file, which will override the command from shell",
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6060",
		},
	}
	myApp.Commands = []cli.Command{
		hexCommand(),
		dbinCommand(),
	}
	myApp.Run(os.Args)
}

func hexCommand() cli.Command {
	return cli.Command{
		Name:      "hex",
		Usage:     "find a solution to the vanilla hex layer problem",
		ArgsUsage: "FUNCTION",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "fast,f",
				Usage: "equivalent to --accuracy -1",
			},
			cli.BoolFlag{
				Name:  "perfect,p",
				Usage: "equivalent to --accuracy 2",
			},
			cli.IntFlag{
				Name:  "accuracy",
				Value: 0,
				Usage: "set search accuracy from -1 to 2, 0 being normal, 2 being perfect",
			},
			cli.IntFlag{
				Name:  "max-length",
				Value: solver.MaxDepthLimit,
				Usage: "limit results to chains up to N layers long",
			},
			cli.IntFlag{
				Name:  "cache",
				Value: 26,
				Usage: "set the cache size to 2**N bytes. default: 26 (64MB)",
			},
		},
		Action: func(c *cli.Context) error {
			config, err := globalConfig(c)
			if err != nil {
				return err
			}
			config.Accuracy = c.Int("accuracy")
			if c.Bool("fast") {
				config.Accuracy = int(solver.AccuracyReduced)
			}
			if c.Bool("perfect") {
				config.Accuracy = int(solver.AccuracyPerfect)
			}
			config.MaxLength = c.Int("max-length")
			config.Cache = c.Int("cache")
			if err := applyJSONConfig(c, config); err != nil {
				return err
			}
			if config.Accuracy < int(solver.AccuracyReduced) || config.Accuracy > int(solver.AccuracyPerfect) {
				return errors.Errorf("%d is not a valid accuracy", config.Accuracy)
			}
			if c.NArg() == 0 {
				cli.ShowCommandHelp(c, "hex")
				return errors.WithStack(solver.ErrNull)
			}
			setup(config)

			if config.Accuracy == int(solver.AccuracyReduced) {
				color.Red("WARNING: reduced accuracy prunes aggressively and may miss optimal solutions.")
			}

			return hexSearch(config, strings.Join(c.Args(), ""))
		},
	}
}

func hexSearch(config *Config, text string) error {
	request, err := solver.ParseRequest(text)
	if err != nil {
		switch errors.Cause(err) {
		case solver.ErrBlank:
			return errors.New("must provide a function to solve for")
		default:
			return err
		}
	}

	if config.Verbosity > 0 {
		log.Printf("searching for %s", request)
	}

	s := solver.New()
	s.Verbosity = config.Verbosity
	s.SetCacheSize(config.Cache)
	redstone.Verbosity = config.Verbosity

	chain := make([]uint16, solver.MaxDepthLimit+1)
	length := s.Solve(context.Background(), request, chain, config.MaxLength, solver.Accuracy(config.Accuracy))
	if length < 0 {
		return errors.Errorf("search failed with code %d", length)
	}
	if length > config.MaxLength {
		if config.Verbosity > 0 {
			log.Printf("no result found")
		}
		return nil
	}

	chain = chain[:length]
	if config.Verbosity > 0 {
		result := fmt.Sprintf("result found, length %d", length)
		if config.Verbosity > 2 || request.Type != solver.SolveExact {
			folded := redstone.ApplyChain(redstone.IdentityBigEndian, chain)
			result += fmt.Sprintf(" (%s)", solver.Request{Mins: uint64(folded), Maxs: uint64(folded)})
		}
		log.Printf("%s:  %s", result, solver.FormatChain(chain))
	} else {
		fmt.Println(solver.FormatChain(chain))
	}
	return nil
}

func dbinCommand() cli.Command {
	return cli.Command{
		Name:      "dbin",
		Usage:     "find a chain ending in a 2bin layer matching one or two binary output patterns",
		ArgsUsage: "PATTERN [PATTERN2]",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "max-layers",
				Value: dbin.MaxDepthLimit,
				Usage: "limit results to chains up to N layers long, including the final 2bin layer",
			},
			cli.IntFlag{
				Name:  "cache",
				Value: 26,
				Usage: "set the cache size to 2**N bytes. default: 26 (64MB)",
			},
		},
		Action: func(c *cli.Context) error {
			config, err := globalConfig(c)
			if err != nil {
				return err
			}
			config.MaxLayers = c.Int("max-layers")
			config.Cache = c.Int("cache")
			if err := applyJSONConfig(c, config); err != nil {
				return err
			}
			if c.NArg() == 0 || c.NArg() > 2 {
				cli.ShowCommandHelp(c, "dbin")
				return errors.New("must provide one or two output patterns")
			}
			setup(config)

			partial, err := parseDbinPatterns(c.Args())
			if err != nil {
				return err
			}
			return dbinSearch(config, partial)
		},
	}
}

func dbinSearch(config *Config, partial uint64) error {
	// prevent erroneous states, if both are set to 1, just make them wildcards
	partial = dbin.Normalize(partial)

	if config.Verbosity > 0 {
		log.Printf("solving for:")
		log.Printf("%s", dbin.FormatPartialMask(dbin.Plane(partial, 1)))
		log.Printf("%s", dbin.FormatPartialMask(dbin.Plane(partial, 2)))
	}

	s := dbin.New()
	s.Verbosity = config.Verbosity
	s.SetCacheSize(config.Cache)
	redstone.Verbosity = config.Verbosity

	maxLayers := config.MaxLayers
	if maxLayers > dbin.MaxDepthLimit {
		maxLayers = dbin.MaxDepthLimit
	}
	chain := make([]uint16, dbin.MaxDepthLimit)
	length := s.Solve(context.Background(), partial, chain, maxLayers)
	if length == maxLayers-1 {
		if config.Verbosity > 0 {
			log.Printf("no result found")
		}
		return nil
	}

	chain = chain[:length]
	if config.Verbosity > 0 {
		log.Printf("solution found, length %d:  %s", length, solver.FormatChain(chain))
	} else {
		fmt.Println(solver.FormatChain(chain))
	}

	exact := (partial | partial>>32) & 0xFFFFFFFF
	if (config.Verbosity > 0 && exact != 0xFFFFFFFF) || config.Verbosity > 2 {
		postHex := redstone.ApplyChain(redstone.Identity, chain[:length-1])
		result := redstone.DbinLayer(postHex, chain[length-1])
		log.Printf("%s", dbin.FormatMask(uint16(result)))
		log.Printf("%s", dbin.FormatMask(uint16(result>>16)))
	}
	return nil
}

// parseDbinPatterns assembles the packed partial mask from one pattern
// per output bit, each a string over {0,1,x,X,.} with the character for
// input value 0 first. Missing positions are don't-care.
func parseDbinPatterns(args []string) (uint64, error) {
	var partial uint64
	for bit, arg := range args {
		ones, zeros, err := parseDbinPattern(arg)
		if err != nil {
			return 0, err
		}
		shift := uint(bit) * 16
		partial |= uint64(zeros) << shift
		partial |= uint64(ones) << (32 + shift)
	}
	return partial, nil
}

func parseDbinPattern(arg string) (ones, zeros uint16, err error) {
	if len(arg) > 16 {
		return 0, 0, errors.Errorf("pattern %q has more than 16 values", arg)
	}
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '1':
			ones |= 1 << uint(i)
		case '0':
			zeros |= 1 << uint(i)
		case '.', 'x', 'X':
		default:
			return 0, 0, errors.Errorf("bad character %q in pattern %q", arg[i], arg)
		}
	}
	return ones, zeros, nil
}

// globalConfig reads the app-level flags shared by both commands.
func globalConfig(c *cli.Context) (*Config, error) {
	config := &Config{}
	config.Verbosity = c.GlobalInt("verbosity")
	config.Log = c.GlobalString("log")
	config.Pprof = c.GlobalBool("pprof")
	return config, nil
}

func applyJSONConfig(c *cli.Context, config *Config) error {
	if path := c.GlobalString("c"); path != "" {
		if err := parseJSONConfig(config, path); err != nil {
			return errors.Wrap(err, "parseJSONConfig")
		}
	}
	return nil
}

// setup applies log redirection and starts pprof, shared by both
// commands.
func setup(config *Config) {
	if config.Log != "" {
		f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		checkError(err)
		log.SetOutput(f)
	}
	if config.Pprof {
		go http.ListenAndServe(":6060", nil)
	}
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
