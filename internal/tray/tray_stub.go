//go:build stub

package tray

import "context"

// noopController 无托盘环境（CI、无桌面会话）下的空实现
type noopController struct{}

func (noopController) Stop() {}

func start(_ context.Context, _ Options) (Controller, error) {
	return noopController{}, nil
}
