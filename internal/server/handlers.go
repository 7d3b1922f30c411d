package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/pixel-marshal/internal/bridge"
	"github.com/ironsheep/pixel-marshal/internal/imageio"
	"github.com/ironsheep/pixel-marshal/internal/invoke"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pixel_info", "pixel_run").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		Logger().Info("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "pixel_info":
		return s.handlePixelInfo(args)
	case "pixel_sample":
		return s.handlePixelSample(args)
	case "pixel_run":
		return s.handlePixelRun(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === pixel_info ===

type pixelInfoArgs struct {
	Path   string `json:"path"`
	Preset string `json:"preset"`
}

// PixelInfoResult describes a decoded file and its exported array shape.
type PixelInfoResult struct {
	*imageio.Info
	Preset string `json:"preset"`
	Shape  []int  `json:"shape"`
	DType  string `json:"dtype"`
}

func (s *Server) handlePixelInfo(args json.RawMessage) (interface{}, error) {
	var a pixelInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Preset == "" {
		a.Preset = s.preset
	}

	info, err := imageio.LoadInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	buf, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	arr, err := bridge.ToPreset(buf, a.Preset)
	if err != nil {
		return nil, err
	}

	return &PixelInfoResult{
		Info:   info,
		Preset: a.Preset,
		Shape:  arr.Shape,
		DType:  arr.DType.String(),
	}, nil
}

// === pixel_sample ===

type pixelSampleArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	C    int    `json:"c"`
}

// PixelSampleResult is one stored value and where it came from.
type PixelSampleResult struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Z     int     `json:"z"`
	C     int     `json:"c"`
	Value float32 `json:"value"`
}

func (s *Server) handlePixelSample(args json.RawMessage) (interface{}, error) {
	var a pixelSampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	v, err := buf.At(a.X, a.Y, a.Z, a.C)
	if err != nil {
		return nil, err
	}
	return &PixelSampleResult{X: a.X, Y: a.Y, Z: a.Z, C: a.C, Value: v}, nil
}

// === pixel_run ===

type pixelRunArgs struct {
	Command   string   `json:"command"`
	Paths     []string `json:"paths"`
	Names     []string `json:"names"`
	OutputDir string   `json:"output_dir"`
}

// RunOutput describes one image of a pixel_run result list.
type RunOutput struct {
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Depth    int    `json:"depth"`
	Spectrum int    `json:"spectrum"`
	File     string `json:"file"`
}

// PixelRunResult lists the images left by a command, in order.
type PixelRunResult struct {
	Command string      `json:"command"`
	Images  []RunOutput `json:"images"`
}

func (s *Server) handlePixelRun(args json.RawMessage) (interface{}, error) {
	var a pixelRunArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		a.OutputDir = s.outputDir
	}

	images, names, err := s.cache.LoadAll(a.Paths)
	if err != nil {
		return nil, err
	}
	if a.Names != nil {
		names = append([]string(nil), a.Names...)
	}

	if err := invoke.Run(s.factory, a.Command, &images, &names); err != nil {
		return nil, err
	}

	files, err := imageio.WriteList(a.OutputDir, images, names, false)
	if err != nil {
		return nil, err
	}

	result := &PixelRunResult{Command: a.Command, Images: make([]RunOutput, 0, len(images))}
	for i, buf := range images {
		result.Images = append(result.Images, RunOutput{
			Name:     names[i],
			Width:    buf.Width(),
			Height:   buf.Height(),
			Depth:    buf.Depth(),
			Spectrum: buf.Spectrum(),
			File:     files[i],
		})
	}
	return result, nil
}
