package cache

import (
	"Storefront/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	productsKey = "products"
	productsTTL = 10 * time.Minute
	// 每次商品異動加一，用來擋掉過期的回寫
	versionKey = "products:version"
)

var errStaleSnapshot = errors.New("cache: product snapshot is stale")

// ProductCache 將商品列表以ID為score存放在Redis的sorted set
// rdb為nil時所有操作都視為cache miss
type ProductCache struct {
	rdb *redis.Client
}

func NewProductCache(rdb *redis.Client) *ProductCache {
	return &ProductCache{rdb: rdb}
}

func (c *ProductCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// 回傳快取中的商品列表，第二個回傳值表示是否命中
func (c *ProductCache) List(ctx context.Context) ([]models.Product, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	count, err := c.rdb.ZCard(ctx, productsKey).Result()
	if err != nil {
		return nil, false, err
	}
	if count == 0 {
		return nil, false, nil
	}

	members, err := c.rdb.ZRange(ctx, productsKey, 0, -1).Result()
	if err != nil {
		return nil, false, err
	}

	products := make([]models.Product, 0, len(members))
	for _, member := range members {
		var product models.Product
		if err := json.Unmarshal([]byte(member), &product); err != nil {
			return nil, false, fmt.Errorf("decode cached product: %w", err)
		}
		products = append(products, product)
	}
	return products, true, nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, rdb stringGetter) (int64, error) {
	version, err := rdb.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// 讀資料庫之前先取得版本，之後交給Store
func (c *ProductCache) Version(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	return readVersion(ctx, c.rdb)
}

// 以資料庫讀出的列表覆蓋快取
// 讀取後商品若已異動(版本不同)就不寫入
func (c *ProductCache) Store(ctx context.Context, version int64, products []models.Product) error {
	if !c.Enabled() || len(products) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(products))
	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			return fmt.Errorf("encode product %d: %w", product.ID, err)
		}
		members = append(members, redis.Z{
			Score:  float64(product.ID),
			Member: productJSON,
		})
	}

	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, productsKey)
			pipe.ZAdd(ctx, productsKey, members...)
			pipe.Expire(ctx, productsKey, productsTTL)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, errStaleSnapshot) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// 商品新增、修改或刪除後呼叫
func (c *ProductCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, productsKey)
		pipe.Incr(ctx, versionKey)
		return nil
	})
	return err
}
