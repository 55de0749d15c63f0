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

// raftctl is the admin client for a raftedge node: a one-shot command mode
// for scripting and an interactive shell for operators, both talking to
// the target node's admin HTTP surface (internal/admin).
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/firefly-raftedge/raftedge/pkg/climod"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "raftedge admin surface address")
	useTLS := flag.Bool("tls", false, "connect over TLS")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification (dev self-signed certs)")
	flag.Parse()

	client := climod.NewClient(*addr, *useTLS, *insecure)

	args := flag.Args()
	if len(args) == 0 {
		runInteractive(client, *addr)
		return
	}
	runOneShot(client, args)
}

func runInteractive(client *climod.Client, addr string) {
	repl, err := climod.NewREPL(client, addr)
	if err != nil {
		climod.NewCLIError("failed to start interactive shell").WithDetail(err.Error()).Exit()
	}
	if err := repl.Run(); err != nil {
		climod.NewCLIError("shell exited with error").WithDetail(err.Error()).Exit()
	}
}

func runOneShot(client *climod.Client, args []string) {
	switch args[0] {
	case "list":
		climod.RunList(client)
	case "add":
		if len(args) < 2 {
			climod.ErrMissingArgument("ip", "raftctl add <ip>").Exit()
		}
		climod.RunAdd(client, args[1])
	case "remove", "rm":
		if len(args) < 2 {
			climod.ErrMissingArgument("ip", "raftctl remove <ip>").Exit()
		}
		climod.RunRemove(client, args[1])
	case "audit":
		n := 20
		if len(args) > 1 {
			if v, err := strconv.Atoi(args[1]); err == nil {
				n = v
			}
		}
		climod.RunAudit(client, n)
	case "health":
		climod.RunHealth(client)
	default:
		fmt.Fprintf(os.Stderr, "usage: raftctl [list|add <ip>|remove <ip>|audit [n]|health]\n")
		os.Exit(2)
	}
}
