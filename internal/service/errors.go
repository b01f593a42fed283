package service

import "errors"

var (
	ErrRoomNotFound  = errors.New("房间不存在")
	ErrNotInRoom     = errors.New("尚未加入房间")
	ErrAlreadyInRoom = errors.New("当前连接已在房间中")
	ErrBadRequest    = errors.New("无效的请求格式")
	ErrUnknownAction = errors.New("未知的请求类型")
	ErrStopped       = errors.New("服务已停止")
)
