// Command tensorcas-repl is a line-oriented driver over the cas
// package, in the manner of the teacher's ivy.go / run/run.go: a
// bufio.Scanner loop with flag-driven configuration and a panic
// recovery boundary around the core's typed errors. It is not the
// pretty-printer or evaluator §6 contracts out to external
// collaborators — it prints ProgString-style debug forms only and
// evaluates nothing numeric (SPEC_FULL §0).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/cas"
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/casconfig"
	"github.com/symtensor/tensorcas/expr"
)

var (
	defaultDim = flag.Int("dim", 3, "default tensor dimension stored in the configuration")
	debug      = flag.String("debug", "", "comma-separated subsystem names to trace (simplify,propagate)")
	prompt     = flag.String("prompt", "tensorcas> ", "command prompt")
)

func main() {
	flag.Parse()

	conf := casconfig.New()
	conf.SetDefaultDim(*defaultDim)
	for _, name := range strings.Split(*debug, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			conf.SetDebug(name, true)
		}
	}

	ctx := cas.NewContext(conf)
	interactive := len(flag.Args()) == 0
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Fprint(os.Stdout, *prompt)
		}
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		runLine(ctx, line)
	}
}

// runLine dispatches one command, recovering from any *caserr.Error
// the core raises the way ivy.go recovers from value.Error: print and
// continue rather than crash the REPL.
func runLine(ctx *cas.Context, line string) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*caserr.Error); ok {
				fmt.Fprintf(os.Stderr, "tensorcas-repl: %s\n", e)
				return
			}
			panic(r)
		}
	}()
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]
	var err error
	switch cmd {
	case "scalar":
		err = cmdScalar(ctx, args)
	case "tensor":
		err = cmdTensor(ctx, args)
	case "print":
		err = cmdPrint(ctx, args)
	case "kind":
		err = cmdKind(ctx, args)
	case "diff":
		err = cmdDiff(ctx, args)
	case "assume":
		err = cmdAssume(ctx, args)
	case "help":
		printHelp()
	default:
		err = fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tensorcas-repl: %s\n", err)
	}
}

func cmdScalar(ctx *cas.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: scalar <name>")
	}
	ctx.AssignScalar(args[0], expr.ScalarSymbol(args[0]))
	return nil
}

func cmdTensor(ctx *cas.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: tensor <name> <dim> <rank>")
	}
	dim, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	rank, err := strconv.Atoi(args[2])
	if err != nil {
		return err
	}
	ctx.AssignTensor(args[0], expr.TensorSymbol(args[0], dim, rank))
	return nil
}

func cmdPrint(ctx *cas.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print <name>")
	}
	s, err := ctx.String(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, s)
	return nil
}

func cmdKind(ctx *cas.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: kind <name>")
	}
	k, err := ctx.Kind(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, k)
	return nil
}

func cmdDiff(ctx *cas.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: diff <result> <expr> <wrt>")
	}
	result, err := ctx.Diff(args[1], args[2])
	if err != nil {
		return err
	}
	switch v := result.(type) {
	case expr.Scalar:
		ctx.AssignScalar(args[0], v)
	case expr.Tensor:
		ctx.AssignTensor(args[0], v)
	default:
		return fmt.Errorf("diff returned an unexpected type %T", result)
	}
	return nil
}

func cmdAssume(ctx *cas.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: assume <name> <tag>")
	}
	tag, ok := numericTags[args[1]]
	if !ok {
		return fmt.Errorf("unknown assumption tag %q", args[1])
	}
	return ctx.AssumeScalar(args[0], tag)
}

var numericTags = map[string]assume.NumericTag{
	"positive":    assume.Positive,
	"negative":    assume.Negative,
	"nonzero":     assume.Nonzero,
	"nonnegative": assume.Nonnegative,
	"nonpositive": assume.Nonpositive,
	"integer":     assume.Integer,
	"even":        assume.Even,
	"odd":         assume.Odd,
	"rational":    assume.Rational,
	"irrational":  assume.Irrational,
	"real":        assume.Real,
	"complex":     assume.Complex,
	"prime":       assume.Prime,
}

func printHelp() {
	fmt.Fprintln(os.Stdout, `commands:
  scalar <name>                 bind name to a fresh scalar symbol
  tensor <name> <dim> <rank>    bind name to a fresh tensor symbol
  print <name>                  print a bound expression's debug form
  kind <name>                   print a bound expression's node kind
  diff <result> <expr> <wrt>    bind result to d(expr)/d(wrt)
  assume <name> <tag>           record a numeric assumption on a scalar
  help                          print this message`)
}
