package services

import (
	"fmt"
	"sync"
)

// 同一停車場的配位、同一會員的 park/leave 都必須序列化，
// 否則兩個併發請求可能搶到同一個車位，或同時通過「一人一單」檢查。
// 這裡用 key 對應的 mutex 做單一寫入者；鎖不回收，數量與停車場/會員數同級。
var (
	entityLocks sync.Map // string -> *sync.Mutex
)

func lockKey(kind string, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

func lockEntity(kind string, id int) *sync.Mutex {
	v, _ := entityLocks.LoadOrStore(lockKey(kind, id), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// lockMember 序列化單一會員的核心操作
func lockMember(memberID int) *sync.Mutex {
	return lockEntity("member", memberID)
}

// lockLot 序列化單一停車場的車位配置
func lockLot(lotID int) *sync.Mutex {
	return lockEntity("lot", lotID)
}
