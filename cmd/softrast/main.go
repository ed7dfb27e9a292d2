// softrast - CPU 3D Model Viewer
// View OBJ and glTF/GLB files in your terminal or a desktop window, or
// render a single frame to PNG/WebP, using the softrast software rasterizer.
//
// Controls (terminal and window):
//
//	Mouse drag  - Rotate model (yaw/pitch)
//	Scroll      - Zoom in/out
//	W/S         - Pitch up/down
//	A/D         - Yaw left/right
//	Q/E         - Roll left/right
//	Space       - Apply random impulse
//	R           - Reset rotation and camera
//	M           - Cycle render mode (mesh, flat, phong, textures)
//	X           - Toggle wireframe (mesh only)
//	T           - Toggle textures
//	B           - Toggle bounding box overlay
//	L           - Light positioning mode (terminal only)
//	?           - Toggle HUD overlay
//	+/-         - Adjust zoom
//	Esc         - Quit (or cancel light mode)
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}
