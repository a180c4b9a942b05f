package threadpool

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseFile reads a configuration file of thread_pool directives:
//
//	thread_pool <name> threads=<N> [max_queue=<M>];
//
// Comments run from '#' to end of line. Declarations feed the registry;
// call Finalize once every configuration source has been read.
func (r *Registry) ParseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return r.Parse(path, data)
}

// Parse reads thread_pool directives from src. filename is used in
// diagnostics only.
func (r *Registry) Parse(filename string, src []byte) error {
	p := &confParser{registry: r, file: filename, line: 1}
	return p.run(string(src))
}

type confParser struct {
	registry *Registry
	file     string
	line     int
}

func (p *confParser) run(src string) error {
	var (
		args      []string
		word      strings.Builder
		startLine int
		comment   bool
	)

	endWord := func() {
		if word.Len() > 0 {
			if len(args) == 0 {
				startLine = p.line
			}
			args = append(args, word.String())
			word.Reset()
		}
	}

	for _, c := range src {
		if c == '\n' {
			endWord()
			p.line++
			comment = false
			continue
		}
		if comment {
			continue
		}
		switch c {
		case '#':
			comment = true
			endWord()
		case ' ', '\t', '\r':
			endWord()
		case ';':
			endWord()
			if err := p.directive(args, startLine); err != nil {
				return err
			}
			args = args[:0]
		default:
			word.WriteRune(c)
		}
	}

	endWord()
	if len(args) > 0 {
		return fmt.Errorf("%w: unexpected end of file in %s:%d, expecting \";\"",
			ErrConfig, p.file, p.line)
	}

	return nil
}

func (p *confParser) directive(args []string, line int) error {
	if len(args) == 0 {
		// A bare ";".
		return nil
	}

	if args[0] != "thread_pool" {
		return fmt.Errorf("%w: unknown directive %q in %s:%d",
			ErrConfig, args[0], p.file, line)
	}

	// Directive takes a name plus one or two parameters.
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("%w: invalid number of arguments in %q directive in %s:%d",
			ErrConfig, args[0], p.file, line)
	}

	name := args[1]
	threads := 0
	maxQueue := DefaultMaxQueue

	for _, arg := range args[2:] {
		switch {
		case strings.HasPrefix(arg, "threads="):
			n, err := strconv.Atoi(arg[len("threads="):])
			if err != nil || n < 1 {
				return fmt.Errorf("%w: invalid threads value %q in %s:%d",
					ErrConfig, arg, p.file, line)
			}
			threads = n

		case strings.HasPrefix(arg, "max_queue="):
			n, err := strconv.Atoi(arg[len("max_queue="):])
			if err != nil || n < 0 {
				return fmt.Errorf("%w: invalid max_queue value %q in %s:%d",
					ErrConfig, arg, p.file, line)
			}
			maxQueue = n

		default:
			return fmt.Errorf("%w: invalid parameter %q in %s:%d",
				ErrConfig, arg, p.file, line)
		}
	}

	if threads == 0 {
		return fmt.Errorf("%w: %q must have \"threads\" parameter in %s:%d",
			ErrConfig, "thread_pool", p.file, line)
	}

	return p.registry.declareAt(name, threads, maxQueue, p.file, line)
}
