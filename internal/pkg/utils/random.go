/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-12 12:25:50
 * @LastEditTime: 2026-01-09 15:48:12
 * @LastEditors: 林远
 */
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// GenerateRandomString
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// 使用 Base64 URL 编码，避免特殊字符问题
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// GenerateSecureToken 生成一个密码学安全的令牌（返回 2*nBytes 字符的十六进制字符串）。
// 用于订阅确认和退订链接中的一次性令牌。
func GenerateSecureToken(nBytes int) (string, error) {
	bytes := make([]byte, nBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// HashToken 计算令牌的加盐摘要。
// 数据库中只保存摘要，即使数据泄露也无法还原出可用的确认链接。
func HashToken(token, salt string) string {
	sum := sha256.Sum256([]byte(salt + token))
	return hex.EncodeToString(sum[:])
}
