package mcp

import "strings"

// ToolDescription provides enhanced descriptions for AI agents
type ToolDescription struct {
	Description string
	WhenToUse   []string
	Examples    []string
	NextTools   []string
}

var toolDescriptions = map[string]ToolDescription{
	"tree_list": {
		Description: "List every tracked git working tree with its short commit id, branch label and dirty files",
		WhenToUse: []string{
			"Before asking about a specific file, to learn which trees are tracked",
			"After a refresh, to see the new state of every tree",
		},
		Examples: []string{
			`tree_list()`,
		},
		NextTools: []string{
			"dirty_check - Check a specific file or directory",
			"commit_info - Look up who last changed a file",
		},
	},

	"dirty_check": {
		Description: "Report whether a file or directory has uncommitted changes. A directory is dirty when anything below it is",
		WhenToUse: []string{
			"When deciding whether a file has local modifications",
			"When asked which folders contain changes",
		},
		Examples: []string{
			`dirty_check(path: "/work/game/assets/textures")`,
		},
		NextTools: []string{
			"commit_info - See the last commit of the file",
			"refresh - Rescan if the answer looks stale",
		},
	},

	"commit_info": {
		Description: "Return the author, time and subject of the last commit touching a file. Unresolved files are queued and reported as unavailable until a later call",
		WhenToUse: []string{
			"When asked who last changed a file, or when",
			"When summarizing recent history of an asset",
		},
		Examples: []string{
			`commit_info(path: "/work/game/assets/hero.png")`,
		},
		NextTools: []string{
			"commit_info - Ask again if the entry was not available yet",
		},
	},

	"refresh": {
		Description: "Force a full rescan of every tracked tree and drop cached commit metadata",
		WhenToUse: []string{
			"After running git commands outside the editor",
			"When results look stale",
		},
		Examples: []string{
			`refresh()`,
		},
		NextTools: []string{
			"tree_list - Check the refreshed state",
		},
	},

	"focus_changed": {
		Description: "Tell treesync the editor regained focus so every tree checks whether HEAD moved",
		WhenToUse: []string{
			"When the user switches back to the editor from a terminal or another tool",
		},
		Examples: []string{
			`focus_changed()`,
		},
		NextTools: []string{
			"tree_list - Check whether any commit changed",
		},
	},
}

// GetEnhancedDescription returns the enhanced description for a tool
func GetEnhancedDescription(toolName string) string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(desc.Description)
	sb.WriteString("\n\nWHEN TO USE THIS TOOL:\n")
	for _, when := range desc.WhenToUse {
		sb.WriteString("- " + when + "\n")
	}
	if len(desc.Examples) > 0 {
		sb.WriteString("\nEXAMPLES:\n")
		for _, example := range desc.Examples {
			sb.WriteString(example + "\n")
		}
	}
	return sb.String()
}

// GetNextToolSuggestions returns suggested next tools for a given tool
func GetNextToolSuggestions(toolName string) []map[string]string {
	desc, ok := toolDescriptions[toolName]
	if !ok {
		return nil
	}
	suggestions := make([]map[string]string, 0, len(desc.NextTools))
	for _, next := range desc.NextTools {
		suggestions = append(suggestions, map[string]string{"tool": next})
	}
	return suggestions
}
