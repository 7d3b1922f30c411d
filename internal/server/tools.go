package server

import "github.com/ironsheep/pixel-marshal/internal/bridge"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "pixel_info",
			Description: "Load an image file into a 4D float32 pixel buffer and describe its layout, plus the array shape it exports to under a conversion preset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"preset": map[string]interface{}{
						"type":        "string",
						"enum":        bridge.Names(),
						"description": "Conversion preset for the exported shape (default from server configuration)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixel_sample",
			Description: "Get the float32 value stored at (x, y, z, c) of an image's pixel buffer.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"x": map[string]interface{}{"type": "integer", "description": "X coordinate (0-based, from left)"},
					"y": map[string]interface{}{"type": "integer", "description": "Y coordinate (0-based, from top)"},
					"z": map[string]interface{}{"type": "integer", "description": "Z slice (default 0)", "default": 0},
					"c": map[string]interface{}{"type": "integer", "description": "Channel (default 0)", "default": 0},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "pixel_run",
			Description: "Run an engine command over a list of images and write every resulting image to the output directory. 2D images with up to 4 channels are written as PNG, anything else as a .pxmr snapshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command": map[string]interface{}{
						"type":        "string",
						"description": "Command line to run, e.g. \"dup[0] reverse\"",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Image files forming the input list, in order",
					},
					"names": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Optional names for the input images (default: file names without extension)",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for result files (default from server configuration)",
					},
				},
				"required": []string{"command"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
