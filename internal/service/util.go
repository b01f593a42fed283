package service

import "github.com/google/uuid"

// GenID 生成连接 ID
func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}
