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
	"bufio"
	"fmt"
	"os"
	"strings"
)

// PromptYesNo prompts for a yes/no answer, defaulting to defaultYes on a
// blank reply or a read error.
func PromptYesNo(message string, defaultYes bool) bool {
	if defaultYes {
		fmt.Printf("%s [%sY%s/n]: ", message, Bold, Reset)
	} else {
		fmt.Printf("%s [y/%sN%s]: ", message, Bold, Reset)
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return defaultYes
	}
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// Confirm prompts before a destructive operation (removing a follower).
func Confirm(message string) bool {
	fmt.Printf("%s %s\n", WarningIcon(), colorize(Yellow, message))
	return PromptYesNo("Are you sure you want to continue?", false)
}
