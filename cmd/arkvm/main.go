// Command arkvm loads a compiled ArkScript bytecode image and runs it.
// Flag surface matches the reference CLI; flags that require a
// lexer/parser/compiler front-end (-c/--compile, -e/--eval, --repl) are
// parsed but rejected with a clear error, since this module implements
// only the bytecode VM, not a compiler. -bcr prints a summary of the
// decoded image instead of running it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ark/bytecode"
	"ark/natives"
	"ark/program"
	"ark/trace"
	"ark/vm"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("arkvm: ")

	var (
		compile  = flag.Bool("c", false, "compile a source file to bytecode (requires a compiler front-end)")
		evalSrc  = flag.String("e", "", "evaluate a source snippet (requires a compiler front-end)")
		bcr      = flag.Bool("bcr", false, "print a summary of the decoded image (tables and page sizes)")
		repl     = flag.Bool("repl", false, "start an interactive REPL (requires a compiler front-end)")
		faOn     = flag.Bool("ffac", false, "enable function-arity checking")
		faOff    = flag.Bool("fno-fac", false, "disable function-arity checking")
		ruvOn    = flag.Bool("fruv", false, "enable remove-unused-vars")
		ruvOff   = flag.Bool("fno-ruv", false, "disable remove-unused-vars")
		config   = flag.String("config", "", "path to a YAML config file layering onto compiled-in defaults")
		traceOn  = flag.Bool("trace", false, "log instruction-level execution to stderr")
		filter   = flag.String("trace-filter", "", "comma-separated glob patterns restricting what -trace logs")
		callFn   = flag.String("call", "", "after running, call this top-level function with no arguments and print its result")
	)
	flag.BoolVar(compile, "compile", false, "same as -c")
	flag.StringVar(evalSrc, "eval", "", "same as -e")
	flag.Usage = usage
	flag.Parse()

	switch {
	case *compile:
		log.Fatal("-c/--compile requires a separate compiler front-end, not part of this VM core")
	case *evalSrc != "":
		log.Fatal("-e/--eval requires a separate compiler front-end, not part of this VM core")
	case *repl:
		log.Fatal("--repl requires a separate compiler front-end, not part of this VM core")
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	sub, rest := args[0], args[1:]
	if sub != "run" {
		log.Fatalf("unknown subcommand %q (only \"run\" is supported)", sub)
	}
	if len(rest) != 1 {
		log.Fatal("usage: arkvm run <file.arkc>")
	}
	path := rest[0]

	flags := program.DefaultFlags()
	var traceFilters []string
	if *config != "" {
		cfg, err := program.LoadConfig(*config)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		flags = cfg.ApplyTo(flags)
		traceFilters = cfg.TraceFilters
	}
	if *faOn {
		flags.ArityCheck = true
	}
	if *faOff {
		flags.ArityCheck = false
	}
	if *ruvOn {
		flags.RemoveUnusedVars = true
	}
	if *ruvOff {
		flags.RemoveUnusedVars = false
	}

	img, err := bytecode.ReadFile(path)
	if err != nil {
		log.Fatalf("reading %s: %v", path, err)
	}

	if *bcr {
		printDisassembly(img)
		return
	}

	state := program.New(img.Pages, img.Symbols, img.Constants, img.Plugins, flags)

	var tracer *trace.Tracer
	if *traceOn {
		if *filter != "" {
			traceFilters = splitNonEmpty(*filter, ',')
		}
		tracer = trace.New(true, traceFilters, os.Stderr)
	}

	m := vm.New(state, natives.Standard(), tracer)
	if status, err := m.Run(); err != nil {
		log.Fatalf("run: %v", err)
	} else if status != 0 {
		os.Exit(status)
	}

	if *callFn != "" {
		result, err := m.Call(*callFn)
		if err != nil {
			log.Fatalf("call %s: %v", *callFn, err)
		}
		fmt.Println(result)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: arkvm [flags] run <file.arkc>")
	flag.PrintDefaults()
}

func printDisassembly(img *bytecode.Image) {
	fmt.Printf("version %d.%d.%d, %d symbol(s), %d constant(s), %d plugin(s), %d page(s)\n",
		img.Version.Major, img.Version.Minor, img.Version.Patch,
		len(img.Symbols), len(img.Constants), len(img.Plugins), len(img.Pages))
	for i, sym := range img.Symbols {
		fmt.Printf("  sym[%d] = %s\n", i, sym)
	}
	for i, c := range img.Constants {
		fmt.Printf("  const[%d] = %s\n", i, c)
	}
	for i, p := range img.Pages {
		fmt.Printf("  page[%d] = %d byte(s)\n", i, len(p))
	}
}

func splitNonEmpty(s string, sep rune) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i, r := range s {
		if r == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
