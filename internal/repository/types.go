package repository

import "time"

// RequestListFilter 查询验证申请列表的过滤条件
type RequestListFilter struct {
	Page        int
	PageSize    int
	DiscordID   string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
