package main

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/octobridge/octobridge/pkg/catalog"
	"github.com/spf13/cobra"
)

var generateDocsCmd = &cobra.Command{
	Use:   "generate-docs",
	Short: "Generate tool documentation",
	Long:  `Regenerate the automated tool-reference section of README.md from the catalogue.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return generateReadmeDocs("README.md")
	},
}

func init() {
	rootCmd.AddCommand(generateDocsCmd)
}

func generateReadmeDocs(readmePath string) error {
	toolsDoc := generateToolsDoc(catalog.New())

	// #nosec G304 - readmePath is fixed by the command, not user input
	content, err := os.ReadFile(readmePath)
	if err != nil {
		return fmt.Errorf("failed to read README.md: %w", err)
	}

	updatedContent, err := replaceSection(string(content), "START AUTOMATED TOOLS", "END AUTOMATED TOOLS", toolsDoc)
	if err != nil {
		return err
	}

	if err := os.WriteFile(readmePath, []byte(updatedContent), 0600); err != nil {
		return fmt.Errorf("failed to write README.md: %w", err)
	}

	fmt.Printf("Successfully updated %s with automated documentation\n", readmePath)
	return nil
}

func generateToolsDoc(cat *catalog.Catalog) string {
	var buf strings.Builder
	for i, tool := range cat.Tools() {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		writeToolDoc(&buf, tool)
	}
	return buf.String()
}

func writeToolDoc(buf *strings.Builder, tool catalog.ToolDescriptor) {
	fmt.Fprintf(buf, "- **%s** - %s", tool.Name, tool.Description)

	schema := tool.InputSchema
	if schema == nil || len(schema.Properties) == 0 {
		buf.WriteString("\n  - No parameters required")
		return
	}

	// Sort parameter names for deterministic output
	var paramNames []string
	for propName := range schema.Properties {
		paramNames = append(paramNames, propName)
	}
	sort.Strings(paramNames)

	for _, propName := range paramNames {
		prop := schema.Properties[propName]
		requiredStr := "optional"
		if slices.Contains(schema.Required, propName) {
			requiredStr = "required"
		}
		fmt.Fprintf(buf, "\n  - `%s`: %s (%s, %s)", propName, prop.Description, propType(prop), requiredStr)
	}
}

func propType(prop *jsonschema.Schema) string {
	if prop.Type == "array" && prop.Items != nil {
		return prop.Items.Type + "[]"
	}
	return prop.Type
}

func replaceSection(content, startMarker, endMarker, newContent string) (string, error) {
	start := fmt.Sprintf("<!-- %s -->", startMarker)
	end := fmt.Sprintf("<!-- %s -->", endMarker)

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if startIdx == -1 || endIdx == -1 {
		return "", fmt.Errorf("markers not found: %s / %s", start, end)
	}

	var buf strings.Builder
	buf.WriteString(content[:startIdx])
	buf.WriteString(start)
	buf.WriteString("\n")
	buf.WriteString(newContent)
	buf.WriteString("\n")
	buf.WriteString(content[endIdx:])
	return buf.String(), nil
}
