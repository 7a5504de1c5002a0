package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wave/errors"
	"github.com/wippyai/wave/schema"
	"github.com/wippyai/wave/skeleton"
	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/validator"
	"github.com/wippyai/wave/value"
	"github.com/wippyai/wave/wave"
)

const usage = `Usage: wave [-v] <command> [flags] [input]

Commands:
  parse     [-type file] <wave>              print the value as JSON
  encode    [-type file] <json>              print the value as WAVE
  validate  -type file [-wave] [-schema] <input>
  skeleton  -type file [-format json|wave]   print a placeholder value
  schema    -type file                       print the JSON Schema of a type
  describe  -type file [-format yaml|json]   print a type and its descriptor
  describe  -wit file [-func name] [-format yaml|json]
                                             print the functions of a WIT package
  edit      -functions file [-func name]     edit call arguments interactively
  edit      -wit file [-func name]

Inputs are literal text, @path to read a file, or - (or nothing) for stdin.
WIT files are resolved package graphs as printed by wasm-tools component wit --json.
`

// unsupported is printed in place of input that has no value tree.
const unsupported = "<unsupported>"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if term.IsTerminal(int(os.Stderr.Fd())) {
			msg = errorStyle.Render(msg)
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wave", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := fs.Bool("v", false, "Log encoder diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = dev
	}
	defer logger.Sync() //nolint:errcheck
	wave.SetLogger(logger)

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.InvalidInput(errors.PhaseLoad, "missing command")
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "parse":
		return runParse(rest, stdin, stdout, stderr)
	case "encode":
		return runEncode(rest, stdin, stdout, stderr)
	case "validate":
		return runValidate(rest, stdin, stdout, stderr)
	case "skeleton":
		return runSkeleton(rest, stdout, stderr)
	case "schema":
		return runSchema(rest, stdout, stderr)
	case "describe":
		return runDescribe(rest, stdout, stderr)
	case "edit":
		return runEdit(rest, stdout, stderr)
	case "help":
		fs.Usage()
		return nil
	}
	fs.Usage()
	return errors.NotFound(errors.PhaseLoad, "command", cmd)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func runParse(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("parse", stderr)
	typeFile := fs.String("type", "", "Type descriptor file (JSON or YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := loadType(*typeFile, false)
	if err != nil {
		return err
	}
	input, err := readInput(fs, stdin)
	if err != nil {
		return err
	}

	v, err := wave.ParseTyped(strings.TrimSpace(string(input)), t)
	if err != nil {
		return err
	}
	out, err := value.EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}

func runEncode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("encode", stderr)
	typeFile := fs.String("type", "", "Type descriptor file (JSON or YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := loadType(*typeFile, false)
	if err != nil {
		return err
	}
	input, err := readInput(fs, stdin)
	if err != nil {
		return err
	}

	v, err := value.DecodeJSON(input)
	if err != nil {
		fmt.Fprintln(stdout, unsupported)
		return err
	}

	text, diags := wave.NewEncoder().Encode(v, t)
	for _, d := range diags {
		fmt.Fprintf(stderr, "warning: %s\n", d)
	}
	fmt.Fprintln(stdout, text)
	return nil
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("validate", stderr)
	typeFile := fs.String("type", "", "Type descriptor file (JSON or YAML)")
	isWave := fs.Bool("wave", false, "Input is WAVE text instead of JSON")
	withSchema := fs.Bool("schema", false, "Also check the input against the generated JSON Schema")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := loadType(*typeFile, true)
	if err != nil {
		return err
	}
	input, err := readInput(fs, stdin)
	if err != nil {
		return err
	}

	var v value.Value
	if *isWave {
		v, err = wave.ParseTyped(strings.TrimSpace(string(input)), t)
	} else {
		v, err = value.DecodeJSON(input)
	}
	if err != nil {
		return err
	}

	if err := validator.Validate(v, t); err != nil {
		return err
	}
	if *withSchema {
		compiled, err := schema.Compile(t)
		if err != nil {
			return err
		}
		if err := schema.Check(compiled, v); err != nil {
			return err
		}
	}

	fmt.Fprintln(stdout, "ok")
	return nil
}

func runSkeleton(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("skeleton", stderr)
	typeFile := fs.String("type", "", "Type descriptor file (JSON or YAML)")
	format := fs.String("format", "json", "Output format: json or wave")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := loadType(*typeFile, true)
	if err != nil {
		return err
	}
	v := skeleton.Generate(t)

	switch *format {
	case "json":
		out, err := value.EncodeJSON(v)
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(out))
	case "wave":
		text, _ := wave.NewEncoder().Encode(v, t)
		fmt.Fprintln(stdout, text)
	default:
		return errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("unknown format %q", *format))
	}
	return nil
}

func runSchema(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("schema", stderr)
	typeFile := fs.String("type", "", "Type descriptor file (JSON or YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := loadType(*typeFile, true)
	if err != nil {
		return err
	}
	if _, err := schema.Compile(t); err != nil {
		return err
	}
	out, err := json.MarshalIndent(schema.Generate(t), "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}

func runDescribe(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("describe", stderr)
	typeFile := fs.String("type", "", "Type descriptor file (JSON or YAML)")
	witFile := fs.String("wit", "", "WIT package graph (wasm-tools JSON)")
	funcName := fs.String("func", "", "Function to describe (with -wit)")
	format := fs.String("format", "yaml", "Descriptor format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *witFile != "" {
		return describeWIT(*witFile, *funcName, *format, stdout)
	}

	t, err := loadType(*typeFile, true)
	if err != nil {
		return err
	}
	out, err := marshalDescriptor(types.Descriptor(t), *format)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, t.String())
	fmt.Fprint(stdout, string(out))
	return nil
}

// describeWIT lists the signatures of a WIT package graph, or prints the
// parameter and result descriptors of one function.
func describeWIT(path, funcName, format string, stdout io.Writer) error {
	funcs, err := types.LoadWITFunctions(path)
	if err != nil {
		return err
	}
	if funcName == "" {
		for _, f := range funcs {
			fmt.Fprintln(stdout, f.String())
		}
		return nil
	}

	f, err := types.FindFunction(funcs, funcName)
	if err != nil {
		return err
	}
	params := make([]map[string]any, len(f.Params))
	for i, p := range f.Params {
		params[i] = map[string]any{"name": p.Name, "typ": types.Descriptor(p.Type)}
	}
	desc := map[string]any{"name": f.Name, "params": params}
	if f.Result != nil {
		desc["result"] = types.Descriptor(f.Result)
	}
	out, err := marshalDescriptor(desc, format)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, f.String())
	fmt.Fprint(stdout, string(out))
	return nil
}

func marshalDescriptor(d any, format string) ([]byte, error) {
	var out []byte
	var err error
	switch format {
	case "yaml":
		out, err = yaml.Marshal(d)
	case "json":
		out, err = json.MarshalIndent(d, "", "  ")
		out = append(out, '\n')
	default:
		return nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("unknown format %q", format))
	}
	if err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	return out, nil
}

func runEdit(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("edit", stderr)
	funcsFile := fs.String("functions", "", "Function signature document (JSON or YAML)")
	witFile := fs.String("wit", "", "WIT package graph (wasm-tools JSON)")
	funcName := fs.String("func", "", "Function to edit (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path, load, err := functionSource(*funcsFile, *witFile)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.InvalidInput(errors.PhaseLoad, "edit needs an interactive terminal")
	}
	return runEditor(path, *funcName, load, stdout)
}

// functionSource picks the signature file and its loader. Exactly one of
// -functions and -wit must be set.
func functionSource(funcsFile, witFile string) (string, func(string) ([]*types.Function, error), error) {
	switch {
	case funcsFile != "" && witFile != "":
		return "", nil, errors.InvalidInput(errors.PhaseLoad, "-functions and -wit are exclusive")
	case witFile != "":
		return witFile, types.LoadWITFunctions, nil
	case funcsFile != "":
		return funcsFile, loadFunctions, nil
	}
	return "", nil, errors.InvalidInput(errors.PhaseLoad, "-functions or -wit is required")
}

func loadFunctions(path string) ([]*types.Function, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return types.ParseFunctions(data)
}

func loadType(path string, required bool) (types.Type, error) {
	if path == "" {
		if required {
			return nil, errors.InvalidInput(errors.PhaseLoad, "-type is required")
		}
		return nil, nil
	}
	return types.LoadFile(path)
}

// readInput returns the first positional argument: literal text, the
// contents of the file named after '@', or stdin for '-' or no argument.
func readInput(fs *flag.FlagSet, stdin io.Reader) ([]byte, error) {
	arg := fs.Arg(0)
	switch {
	case arg == "" || arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Load("read stdin", err)
		}
		return data, nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, errors.Load("read input file", err)
		}
		return data, nil
	}
	return []byte(arg), nil
}
