package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrQuit ends the read loop.
var ErrQuit = errors.New("quit")

// Command is one shell verb.
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Run         func(ctx context.Context, args []string) error
}

func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nEXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

// Registry keeps commands in registration order for help output.
type Registry struct {
	commands map[string]*Command
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) Register(cmd *Command) {
	if _, ok := r.commands[cmd.Name]; !ok {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

func (r *Registry) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}

	cmd, ok := r.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command: %s (try 'help')", args[0])
	}
	return cmd.Run(ctx, args[1:])
}

func (r *Registry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "COMMANDS:")
	for _, name := range r.order {
		cmd := r.commands[name]
		fmt.Fprintf(w, "    %-10s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'help <command>' for more information on a command.")
}
