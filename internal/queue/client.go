package queue

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 订单超时取消，影响库存释放
	CriticalQueue = constants.QueueCritical

	defaultConcurrency = 10
	reconcileUniqueTTL = time.Minute
)

// Client 任务投递；队列未启用时所有投递为空操作，订单改为读取时惰性取消
type Client struct {
	client *asynq.Client
}

func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg))}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueue(typeName string, payload interface{}, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := newTask(typeName, payload, opts...)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task)
	// 同一订单或同一券的任务已在队列中
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// EnqueueOrderTimeoutCancel 延迟 delay 后取消订单；每个订单只保留一个任务
func (c *Client) EnqueueOrderTimeoutCancel(payload OrderTimeoutCancelPayload, delay time.Duration) error {
	return c.enqueue(TaskOrderTimeoutCancel, payload,
		asynq.Queue(CriticalQueue),
		asynq.ProcessIn(max(delay, 0)),
		asynq.TaskID("order-timeout:"+strconv.FormatUint(uint64(payload.OrderID), 10)),
	)
}

// EnqueueCouponReconcileUsage 同一券一分钟内只投递一次
func (c *Client) EnqueueCouponReconcileUsage(payload CouponReconcileUsagePayload) error {
	return c.enqueue(TaskCouponReconcileUsage, payload,
		asynq.Queue(DefaultQueue),
		asynq.Unique(reconcileUniqueTTL),
		asynq.MaxRetry(3),
	)
}

// BuildServerConfig 消费端连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 6, DefaultQueue: 3},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host, port := "127.0.0.1", 6379
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if h := strings.TrimSpace(cfg.Host); h != "" {
			host = h
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return opt
}
