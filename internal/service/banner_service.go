package service

import (
	"slices"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// BannerService 促销投放位管理与前台展示
type BannerService struct {
	repo       repository.BannerRepository
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewBannerService(repo repository.BannerRepository, couponRepo repository.CouponRepository) *BannerService {
	return &BannerService{repo: repo, couponRepo: couponRepo, now: time.Now}
}

// BannerInput 创建/更新 Banner 输入，更新为整体覆盖
type BannerInput struct {
	Name         string
	Position     string
	TitleJSON    map[string]interface{}
	SubtitleJSON map[string]interface{}
	Image        string
	MobileImage  string
	LinkType     string
	LinkValue    string
	CouponCode   string
	OpenInNewTab *bool
	IsActive     *bool
	StartAt      *time.Time
	EndAt        *time.Time
	SortOrder    int
}

func (s *BannerService) ListAdmin(position, search string, isActive *bool, page, pageSize int) ([]models.Banner, int64, error) {
	return s.repo.List(repository.BannerListFilter{
		Paging:   repository.Paging{Page: page, PageSize: pageSize},
		Position: strings.TrimSpace(position),
		Search:   strings.TrimSpace(search),
		IsActive: isActive,
	})
}

// ListPublic 前台投放列表；绑定的优惠码已停用、过期或用尽时该 Banner 不展示
func (s *BannerService) ListPublic(position string, limit int) ([]models.Banner, error) {
	position = strings.ToLower(strings.TrimSpace(position))
	if !slices.Contains(constants.BannerPositions, position) {
		return []models.Banner{}, nil
	}
	now := s.now()
	banners, err := s.repo.ListLive(position, limit, now)
	if err != nil {
		return nil, err
	}

	usable := make(map[string]bool)
	visible := banners[:0]
	for _, banner := range banners {
		if !banner.LiveAt(now) {
			continue
		}
		if banner.CouponCode == "" {
			visible = append(visible, banner)
			continue
		}
		ok, seen := usable[banner.CouponCode]
		if !seen {
			ok = s.couponAdvertisable(banner.CouponCode, now)
			usable[banner.CouponCode] = ok
		}
		if ok {
			visible = append(visible, banner)
		}
	}
	return visible, nil
}

// couponAdvertisable 只看优惠券自身状态，不涉及购物车与用户
func (s *BannerService) couponAdvertisable(code string, now time.Time) bool {
	if s.couponRepo == nil {
		return true
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		logger.Warnw("banner_coupon_lookup_failed", "coupon_code", code, "error", err)
		return false
	}
	if coupon == nil || !coupon.IsActive {
		return false
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return false
	}
	return coupon.UsageLimit <= 0 || coupon.UsedCount < coupon.UsageLimit
}

func (s *BannerService) GetByID(id uint) (*models.Banner, error) {
	banner, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if banner == nil {
		return nil, ErrBannerNotFound
	}
	return banner, nil
}

// resolveCouponCode 统一大写并确认优惠券存在
func (s *BannerService) resolveCouponCode(raw string) (string, error) {
	code := NormalizeCouponCode(raw)
	if code == "" || s.couponRepo == nil {
		return code, nil
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return "", err
	}
	if coupon == nil {
		return "", ErrCouponNotFound
	}
	return code, nil
}

func (s *BannerService) Create(input BannerInput) (*models.Banner, error) {
	banner := &models.Banner{IsActive: true}
	if err := s.apply(banner, input); err != nil {
		return nil, err
	}
	if err := s.repo.Save(banner); err != nil {
		return nil, err
	}
	logger.Infow("banner_created", "banner_id", banner.ID, "position", banner.Position, "coupon_code", banner.CouponCode)
	return banner, nil
}

func (s *BannerService) Update(id uint, input BannerInput) (*models.Banner, error) {
	banner, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(banner, input); err != nil {
		return nil, err
	}
	if err := s.repo.Save(banner); err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *BannerService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// apply 校验输入并写入 banner；coupon 跳转的 LinkValue 即优惠码
func (s *BannerService) apply(banner *models.Banner, input BannerInput) error {
	name := strings.TrimSpace(input.Name)
	image := strings.TrimSpace(input.Image)
	if name == "" || image == "" {
		return ErrInvalidBanner
	}
	position := strings.ToLower(strings.TrimSpace(input.Position))
	if position == "" {
		position = constants.BannerPositionHomeHero
	}
	if !slices.Contains(constants.BannerPositions, position) {
		return ErrInvalidBanner
	}
	if input.StartAt != nil && input.EndAt != nil && input.EndAt.Before(*input.StartAt) {
		return ErrInvalidBanner
	}

	linkType, linkValue, couponRaw, err := normalizeBannerLink(input)
	if err != nil {
		return err
	}
	code, err := s.resolveCouponCode(couponRaw)
	if err != nil {
		return err
	}
	if linkType == constants.BannerLinkTypeCoupon {
		linkValue = code
	}

	banner.Name = name
	banner.Position = position
	banner.TitleJSON = normalizeMultiLangJSON(input.TitleJSON)
	banner.SubtitleJSON = normalizeMultiLangJSON(input.SubtitleJSON)
	banner.Image = image
	banner.MobileImage = strings.TrimSpace(input.MobileImage)
	banner.LinkType = linkType
	banner.LinkValue = linkValue
	banner.CouponCode = code
	banner.StartAt = input.StartAt
	banner.EndAt = input.EndAt
	banner.SortOrder = input.SortOrder
	if input.OpenInNewTab != nil {
		banner.OpenInNewTab = *input.OpenInNewTab
	}
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}
	return nil
}

// normalizeBannerLink 返回跳转类型、跳转值与待校验的优惠码
func normalizeBannerLink(input BannerInput) (string, string, string, error) {
	linkType := strings.ToLower(strings.TrimSpace(input.LinkType))
	linkValue := strings.TrimSpace(input.LinkValue)
	coupon := strings.TrimSpace(input.CouponCode)

	switch linkType {
	case "", constants.BannerLinkTypeNone:
		return constants.BannerLinkTypeNone, "", coupon, nil
	case constants.BannerLinkTypeInternal, constants.BannerLinkTypeExternal:
		if linkValue == "" {
			return "", "", "", ErrInvalidBanner
		}
		return linkType, linkValue, coupon, nil
	case constants.BannerLinkTypeCoupon:
		if coupon == "" {
			coupon = linkValue
		}
		if coupon == "" || (linkValue != "" && NormalizeCouponCode(linkValue) != NormalizeCouponCode(coupon)) {
			return "", "", "", ErrInvalidBanner
		}
		return linkType, "", coupon, nil
	default:
		return "", "", "", ErrInvalidBanner
	}
}

func normalizeMultiLangJSON(raw map[string]interface{}) models.JSON {
	result := make(models.JSON, len(constants.SupportedLocales))
	for _, locale := range constants.SupportedLocales {
		text, _ := raw[locale].(string)
		result[locale] = strings.TrimSpace(text)
	}
	return result
}
