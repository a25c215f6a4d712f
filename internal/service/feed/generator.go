package feed

import (
	"context"
	"time"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	"github.com/darkkaiser/shopping-feed-server/internal/service/feed/shopify"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// component 피드 생성기 로깅용 컴포넌트 이름
const component = "feed.generator"

// CatalogSource 상품 카탈로그 전체를 제공하는 소스의 인터페이스입니다.
type CatalogSource interface {
	// FetchAllProducts 카탈로그의 모든 상품을 페이지 순서 그대로 반환합니다.
	FetchAllProducts(ctx context.Context) ([]shopify.Product, error)
}

// Generator 카탈로그 수집부터 CSV 직렬화까지 피드 생성 전체 과정을 조율합니다.
//
// 하나의 호출은 순차적인 단일 파이프라인(수집 → 변환 → 직렬화)으로 동작하며,
// 모든 중간 상태는 호출 내부에만 존재하므로 동시 호출 간에 공유 상태가 없습니다.
type Generator struct {
	source CatalogSource

	baseURL      string
	currencyCode string
}

// NewGenerator 새로운 Generator 인스턴스를 생성합니다.
func NewGenerator(source CatalogSource, cfg *config.FeedConfig) *Generator {
	return &Generator{
		source:       source,
		baseURL:      cfg.BaseURL,
		currencyCode: cfg.Currency,
	}
}

// Generate 피드 문서 전체를 생성하여 반환합니다.
//
// 처리 규칙:
//   - 판매 중(active) 상태의 상품만 피드에 포함되며, 상품당 Variant 수만큼의 레코드가
//     상품 순서 → Variant 순서로 생성됩니다.
//   - 부분 실패 처리는 없습니다. 수집 단계에서 에러가 발생하면 전체 실행이 중단되며,
//     호출자는 완전한 피드 또는 에러만을 전달받습니다. (불완전한 피드는 절대 출력되지 않음)
func (g *Generator) Generate(ctx context.Context) (string, error) {
	started := time.Now()

	products, err := g.source.FetchAllProducts(ctx)
	if err != nil {
		return "", err
	}

	var rows [][]string
	var activeCount int

	for i := range products {
		p := &products[i]
		if !p.IsActive() {
			continue
		}
		activeCount++

		for j := range p.Variants {
			rows = append(rows, BuildRow(p, &p.Variants[j], g.baseURL, g.currencyCode))
		}
	}

	document := Render(Header(), rows)

	applog.WithComponentAndFields(component, applog.Fields{
		"products":        len(products),
		"active_products": activeCount,
		"rows":            len(rows),
		"bytes":           len(document),
		"elapsed":         time.Since(started).String(),
	}).Info("피드 생성 완료")

	return document, nil
}
