/*
 * @Description: 评论树的窗口切片与组装
 * @Author: 林远
 * @Date: 2025-09-15 10:22:40
 * @LastEditTime: 2026-06-21 15:08:33
 * @LastEditors: 林远
 */
package comment

import (
	"sort"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/handler/comment/dto"
)

// pageWindow 在内存中完成状态过滤、时间排序和分页切片。
// 分页作用在扁平的评论序列上，发生在树组装之前，
// 返回的 total 是过滤后的全部评论数（含子回复）。
func pageWindow(all []*model.Comment, status model.CommentStatus, sortOrder string, page, pageSize int) ([]*model.Comment, int64) {
	filtered := make([]*model.Comment, 0, len(all))
	for _, c := range all {
		if c.Status == status {
			filtered = append(filtered, c)
		}
	}

	// 排序方向只认 asc，其余一律按 desc 处理
	asc := sortOrder == "asc"
	sort.SliceStable(filtered, func(i, j int) bool {
		ci, cj := filtered[i], filtered[j]
		if !ci.CreatedAt.Equal(cj.CreatedAt) {
			if asc {
				return ci.CreatedAt.Before(cj.CreatedAt)
			}
			return ci.CreatedAt.After(cj.CreatedAt)
		}
		// 同一时刻的评论按ID保证顺序稳定
		if asc {
			return ci.ID < cj.ID
		}
		return ci.ID > cj.ID
	})

	total := int64(len(filtered))
	start := (page - 1) * pageSize
	if start < 0 || start >= len(filtered) {
		return []*model.Comment{}, total
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total
}

// assembleTree 只用当前窗口内的评论组装评论树。
// 父评论不在窗口内的回复会被提升为根节点，
// 窗口里的每条评论在结果中恰好出现一次。
func assembleTree(window []*model.Comment, convert func(*model.Comment) *dto.Response) []*dto.Response {
	nodes := make(map[uint]*dto.Response, len(window))
	for _, c := range window {
		nodes[c.ID] = convert(c)
	}

	roots := make([]*dto.Response, 0, len(window))
	for _, c := range window {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
