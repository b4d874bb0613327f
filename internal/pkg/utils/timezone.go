/*
 * @Description: 时区工具 - 按东八区归并日期
 * @Author: 林远
 * @Date: 2025-09-22 09:15:40
 * @LastEditTime: 2026-04-18 20:31:09
 * @LastEditors: 林远
 */
package utils

import "time"

// ChinaTimezone 中国标准时间 UTC+8，与数据库按日聚合所用时区保持一致
var ChinaTimezone = time.FixedZone("CST", 8*60*60)

// ToChina 将时间转换为东八区
func ToChina(t time.Time) time.Time {
	return t.In(ChinaTimezone)
}

// StartOfDayInChina 获取指定时刻在东八区当天的零点
func StartOfDayInChina(t time.Time) time.Time {
	ct := t.In(ChinaTimezone)
	return time.Date(ct.Year(), ct.Month(), ct.Day(), 0, 0, 0, 0, ChinaTimezone)
}
