package utils

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/shlex"
)

/**
 * Replace <name> placeholders in a command template
 * @param {string} cmdLine - Template, e.g. "rtl_fm -f <freq> -d <sdr_index>"
 * @param {map[string]string} params - Placeholder values
 * @returns {string} Returns the substituted command line
 * @description
 * - Every literal occurrence of <name> is replaced with params[name]
 * - Placeholders without a parameter are left verbatim
 * - Substitution happens before tokenizing, so values may carry quotes
 */
func SubstitutePlaceholders(cmdLine string, params map[string]string) string {
	if len(params) == 0 {
		return cmdLine
	}
	// fixed order keeps the result deterministic when one value contains another placeholder
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := cmdLine
	for _, k := range keys {
		result = strings.ReplaceAll(result, "<"+k+">", params[k])
	}
	return result
}

// ParseCommand splits a command line into an argument vector using shell quoting rules.
func ParseCommand(cmdLine string) ([]string, error) {
	args, err := shlex.Split(cmdLine)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command line %q: %w", cmdLine, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("command line %q is empty", cmdLine)
	}
	return args, nil
}

// GetCommandLine resolves a template against params and tokenizes the result.
func GetCommandLine(cmdLine string, params map[string]string) ([]string, error) {
	return ParseCommand(SubstitutePlaceholders(cmdLine, params))
}
