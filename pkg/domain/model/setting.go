/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-12 13:44:51
 * @LastEditTime: 2025-10-03 09:21:30
 * @LastEditors: 林远
 */
package model

import "time"

// Setting 是核心业务模型
type Setting struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ConfigKey string    `json:"key"`
	Value     string    `json:"value"`
	Comment   string    `json:"comment"`
}
