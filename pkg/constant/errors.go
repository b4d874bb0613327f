/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-12 10:42:18
 * @LastEditTime: 2026-05-30 16:21:07
 * @LastEditors: 林远
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404
	ErrNotFound = errors.New("资源未找到")

	// ErrForbidden 表示无权访问，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrConflict 表示资源冲突，可以由 Handler 转换为 409
	ErrConflict = errors.New("资源冲突")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")

	// ErrBadRequest 表示请求参数错误，可以由 Handler 转换为 400
	ErrBadRequest = errors.New("错误的请求")

	// ErrUnauthorized 表示未授权，可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = errors.New("无效令牌")

	// ErrInvalidPublicID 表示无效的公共ID，可以由 Handler 转换为 400
	ErrInvalidPublicID = errors.New("无效的公共ID")

	// ErrArticleNotPublished 表示文章未发布，对外等同于资源不存在
	ErrArticleNotPublished = errors.New("文章不存在或未发布")

	// ErrCommentHasChildren 表示评论下还有子回复，必须先删除子回复
	ErrCommentHasChildren = errors.New("该评论下存在子回复，请先删除子回复")

	// ErrParentCommentNotFound 表示回复的父评论在该文章下不存在
	ErrParentCommentNotFound = errors.New("回复的评论不存在")

	// ErrAlreadySubscribed 表示该邮箱已是有效订阅者
	ErrAlreadySubscribed = errors.New("该邮箱已订阅")

	// ErrSubscriberNotActive 表示订阅尚未生效，无法修改订阅偏好
	ErrSubscriberNotActive = errors.New("订阅尚未生效，无法修改订阅偏好")

	// ErrRateLimited 表示触发了频率限制，可以由 Handler 转换为 429
	ErrRateLimited = errors.New("操作过于频繁，请稍后再试")
)
