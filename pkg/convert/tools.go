package convert

import (
	"github.com/nikketryhard/a2c/pkg/provider/types"
	"github.com/nikketryhard/a2c/pkg/schema"
)

// buildTools converts Messages-format tool declarations into the single
// functionDeclarations group the upstream expects, sanitizing each
// tool's input schema on the way.
func buildTools(tools []types.Tool) []types.GenContentTool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]types.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			continue
		}
		decls = append(decls, types.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema.Clean(t.InputSchema),
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return []types.GenContentTool{{FunctionDeclarations: decls}}
}
