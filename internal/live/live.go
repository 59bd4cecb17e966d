// Package live реализует живые коллекции: издатель загружает коллекцию
// целиком и рассылает снимок через pub/sub, подписчик заменяет свой список
// каждым снимком и сортирует его на своей стороне.
//
// Порядок задаётся чистой функцией, применяемой после каждого снимка:
// публикации от новых к старым, сообщения от старых к новым. Равные
// createdAt сохраняют порядок доставки внутри снимка.
package live

import (
	"fmt"
	"slices"

	"github.com/Eka2r/Padayon/internal/models"
)

// Collection names.
const (
	Posts    = "freedom_wall_posts"
	Messages = "community_messages"
)

// Path returns the document path of a collection under the app namespace.
func Path(appID, collection string) string {
	return fmt.Sprintf("artifacts/%s/public/data/%s", appID, collection)
}

func channelName(appID, collection string) string {
	return "live:" + Path(appID, collection)
}

func latestKey(appID, collection string) string {
	return channelName(appID, collection) + ":latest"
}

// Snapshot is one complete delivery of a collection.
type Snapshot[T any] struct {
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Version    int64  `json:"version"`
	Items      []T    `json:"items"`
}

// Order compares two documents for sorting.
type Order[T any] func(a, b T) int

// PostsNewestFirst orders posts descending by createdAt. A missing timestamp
// sorts as the oldest.
func PostsNewestFirst(a, b models.Post) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

// MessagesOldestFirst orders messages ascending by createdAt.
func MessagesOldestFirst(a, b models.Message) int {
	return a.CreatedAt.Compare(b.CreatedAt)
}

// Sorted returns a sorted copy of items. The input is not modified.
func Sorted[T any](items []T, order Order[T]) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, order)
	return out
}
