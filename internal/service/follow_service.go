package service

import (
	"context"
	"time"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/pkg/logger"
	"yatube/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type FollowService struct {
	repo  *mysql.FollowRepository
	users *mysql.UserRepository
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		repo:  &mysql.FollowRepository{DB: db},
		users: &mysql.UserRepository{DB: db},
	}
}

func (s *FollowService) author(ctx context.Context, username string) (*model.User, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return author, nil
}

// Follow 关注自己或重复关注都是 no-op
func (s *FollowService) Follow(ctx context.Context, p Principal, username string) (bool, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return false, err
	}
	if author.ID == p.UserID {
		return false, nil
	}
	return s.repo.Follow(ctx, p.UserID, author.ID)
}

// Unfollow 没有关注关系时是 no-op
func (s *FollowService) Unfollow(ctx context.Context, p Principal, username string) (bool, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return false, err
	}
	return s.repo.Unfollow(ctx, p.UserID, author.ID)
}

func (s *FollowService) IsFollowing(ctx context.Context, p Principal, authorID uint64) (bool, error) {
	if !p.IsAuthenticated() || p.UserID == authorID {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, p.UserID, authorID)
}

type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// KafkaSender 以关注者 id 为 key 投递，同一关注者的事件保持顺序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.Follower), []byte(ob.Payload))
	}
}

// OutboxRelayer 定时把 social_outbox 中待投递的事件交给 sender
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	maxRetry  int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		maxRetry:  5,
		interval:  time.Second,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce 返回成功投递的条数
func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		logger.L.Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := &rows[i]
		if err = r.sender(ctx, ob); err != nil {
			logger.L.Warn("outbox send failed", zap.Uint64("id", ob.ID), zap.Int("retry", ob.Retry), zap.Error(err))
			if err = r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				logger.L.Error("outbox retry update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			continue
		}
		if err = r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			logger.L.Error("outbox success update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// FollowCountReconciler 用 follows 表校正 users 上的关注数和粉丝数
type FollowCountReconciler struct {
	repo      *mysql.FollowCountReconcilerRepo
	batchSize int
	interval  time.Duration
}

func NewFollowCountReconciler(db *gorm.DB) *FollowCountReconciler {
	return &FollowCountReconciler{
		repo:      &mysql.FollowCountReconcilerRepo{DB: db},
		batchSize: 500,
		interval:  5 * time.Minute,
	}
}

func (r *FollowCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.reconcileOnce(ctx)
		}
	}
}

// reconcileOnce 遍历全部用户，返回被修正的用户数
func (r *FollowCountReconciler) reconcileOnce(ctx context.Context) int {
	var (
		lastID uint64
		fixed  int
	)
	for {
		users, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
		if err != nil {
			logger.L.Error("reconcile list failed", zap.Uint64("last_id", lastID), zap.Error(err))
			return fixed
		}
		if len(users) == 0 {
			return fixed
		}
		for _, u := range users {
			following, err := r.repo.RealFollowing(ctx, u.ID)
			if err != nil {
				continue
			}
			followers, err := r.repo.RealFollowers(ctx, u.ID)
			if err != nil {
				continue
			}
			changed := false
			if following != u.FollowingCount {
				changed = r.repo.FixFollowing(ctx, u.ID, following) == nil
			}
			if followers != u.FollowerCount {
				changed = r.repo.FixFollowers(ctx, u.ID, followers) == nil || changed
			}
			if changed {
				fixed++
			}
		}
		lastID = next
	}
}
