/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package climod

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// REPL is raftctl's interactive shell: list/add/remove followers plus
// audit/health lookups against one node's admin surface.
type REPL struct {
	client *Client
	rl     *readline.Instance
}

// NewREPL builds an interactive shell against client, prompting with
// the given node address.
func NewREPL(client *Client, addr string) (*REPL, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%sraftctl(%s)>%s ", Cyan, addr, Reset),
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("start readline: %w", err)
	}
	return &REPL{client: client, rl: rl}, nil
}

// Run reads commands until EOF/Ctrl-D or an "exit"/"quit" command.
func (r *REPL) Run() error {
	defer r.rl.Close()
	PrintInfo("connected. type 'help' for commands, 'exit' to quit.")

	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		r.dispatch(line)
	}
}

func (r *REPL) dispatch(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
	case "list":
		RunList(r.client)
	case "add":
		if len(args) < 1 {
			ErrMissingArgument("ip", "add <ip>").Print()
			return
		}
		RunAdd(r.client, args[0])
	case "remove", "rm":
		if len(args) < 1 {
			ErrMissingArgument("ip", "remove <ip>").Print()
			return
		}
		if !Confirm(fmt.Sprintf("This will remove follower %s.", args[0])) {
			PrintInfo("cancelled")
			return
		}
		RunRemove(r.client, args[0])
	case "audit":
		n := 20
		if len(args) > 0 {
			if v, err := strconv.Atoi(args[0]); err == nil {
				n = v
			}
		}
		RunAudit(r.client, n)
	case "health":
		RunHealth(r.client)
	default:
		ErrInvalidCommand(cmd).Print()
	}
}

func printHelp() {
	fmt.Println()
	fmt.Printf("%sCommands%s\n", Bold, Reset)
	fmt.Println("  list              list tracked followers and their liveness score")
	fmt.Println("  add <ip>          add a follower to the cluster")
	fmt.Println("  remove <ip>       remove a follower from the cluster (asks to confirm)")
	fmt.Println("  audit [n]         show the n most recent audit events (default 20)")
	fmt.Println("  health            check the node's /healthz status")
	fmt.Println("  exit, quit        leave the shell")
	fmt.Println()
}
