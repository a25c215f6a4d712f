package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	apperrors "github.com/darkkaiser/shopping-feed-server/internal/pkg/errors"
	"github.com/darkkaiser/shopping-feed-server/internal/pkg/fetcher"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
)

// component Shopify 클라이언트 로깅용 컴포넌트 이름
const component = "feed.shopify"

// productFields 상품 목록 조회 시 요청하는 필드 목록입니다.
// 피드 생성에 필요한 필드만 요청하여 응답 크기를 줄입니다.
const productFields = "id,title,handle,variants,images,body_html,vendor,product_type,status,options,tags"

// maxResponseBodySize 응답 본문의 최대 허용 크기입니다. (악의적인 대용량 응답으로부터 보호)
const maxResponseBodySize = 32 * 1024 * 1024 // 32MB

// Client Shopify REST Admin API 클라이언트입니다.
type Client struct {
	fetcher fetcher.Fetcher

	baseURL     string
	accessToken string
	apiVersion  string
	pageSize    int
	maxPages    int
}

// NewClient 설정으로부터 새로운 Client 인스턴스를 생성합니다.
//
// 내부 HTTP 클라이언트는 다음 순서의 데코레이터 체인으로 구성됩니다.
//
//	ThrottleFetcher(호출 속도 제한) → RetryFetcher(재시도) → StatusCodeFetcher(상태 코드 검증) → HTTPFetcher
func NewClient(cfg *config.ShopifyConfig) *Client {
	f := fetcher.NewThrottleFetcher(
		fetcher.NewRetryFetcher(
			fetcher.NewStatusCodeFetcher(
				fetcher.NewHTTPFetcher(cfg.TimeoutDuration()),
			),
			cfg.Retry.MaxRetries,
			cfg.Retry.MinRetryDelayDuration(),
			cfg.Retry.MaxRetryDelayDuration(),
		),
		rate.Limit(cfg.RateLimitPerSec), 1,
	)

	return NewClientWithFetcher(f, "https://"+cfg.ShopDomain, cfg)
}

// NewClientWithFetcher 외부에서 주입한 Fetcher와 기준 URL로 Client 인스턴스를 생성합니다.
// 테스트 환경에서 로컬 서버를 대상으로 동작시키기 위해 사용합니다.
func NewClientWithFetcher(f fetcher.Fetcher, baseURL string, cfg *config.ShopifyConfig) *Client {
	return &Client{
		fetcher:     f,
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		pageSize:    cfg.PageSize,
		maxPages:    cfg.MaxPages,
	}
}

// FetchAllProducts 상품 카탈로그 전체를 페이지 단위로 수집하여 응답 순서 그대로 반환합니다.
//
// 페이지네이션 규칙:
//   - 첫 페이지는 limit/fields 쿼리로 요청합니다.
//   - 이후 페이지는 응답 Link 헤더(rel="next")의 URL을 그대로 사용합니다. (쿼리 재구성 금지)
//   - Link 헤더에 다음 페이지가 없으면 종료합니다.
//   - 오동작하는 소스가 끝없이 연속 토큰을 반환하는 상황을 방어하기 위해,
//     설정된 최대 페이지 수(maxPages)를 초과하면 ExecutionFailed 에러를 반환합니다.
//
// 전송/인증 오류는 재시도 정책이 적용된 후에도 실패하면 그대로 호출자에게 전파됩니다.
func (c *Client) FetchAllProducts(ctx context.Context) ([]Product, error) {
	requestURL := fmt.Sprintf("%s/admin/api/%s/products.json?limit=%d&fields=%s",
		c.baseURL, c.apiVersion, c.pageSize, url.QueryEscape(productFields))

	var products []Product

	for page := 1; ; page++ {
		if page > c.maxPages {
			return nil, apperrors.Newf(apperrors.ExecutionFailed,
				"상품 목록 조회가 최대 페이지 수(%d)를 초과했습니다. 카탈로그 소스의 페이지네이션 동작을 확인하세요", c.maxPages)
		}

		pageProducts, nextURL, err := c.fetchProductPage(ctx, requestURL)
		if err != nil {
			return nil, err
		}
		products = append(products, pageProducts...)

		applog.WithComponentAndFields(component, applog.Fields{
			"page":        page,
			"fetched":     len(pageProducts),
			"accumulated": len(products),
			"has_next":    nextURL != "",
		}).Debug("상품 목록 페이지 수신")

		if nextURL == "" {
			return products, nil
		}
		requestURL = nextURL
	}
}

// fetchProductPage 한 페이지 분량의 상품 목록과 다음 페이지 URL을 가져옵니다.
func (c *Client) fetchProductPage(ctx context.Context, requestURL string) ([]Product, string, error) {
	var page struct {
		Products []Product `json:"products"`
	}

	header, err := c.fetchJSON(ctx, requestURL, &page)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ExecutionFailed, "Shopify 상품 목록 조회에 실패했습니다")
	}

	return page.Products, nextPageURL(header.Get("Link")), nil
}

// FetchShopName 스토어의 표시 이름을 조회합니다.
// 피드 다운로드 파일명 구성에 사용되며, 실패 시 에러를 반환하되 피드 생성 자체는 막지 않아야 합니다.
func (c *Client) FetchShopName(ctx context.Context) (string, error) {
	requestURL := fmt.Sprintf("%s/admin/api/%s/shop.json?fields=name", c.baseURL, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ExecutionFailed, "Shopify 스토어 정보 조회에 실패했습니다")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ExecutionFailed, "Shopify 스토어 정보 응답을 읽는데 실패했습니다")
	}

	name := gjson.GetBytes(body, "shop.name").String()
	if name == "" {
		return "", apperrors.New(apperrors.ParsingFailed, "Shopify 스토어 정보 응답에서 스토어 이름(shop.name)을 찾을 수 없습니다")
	}

	return name, nil
}

// fetchJSON 지정된 URL로 GET 요청을 보내 JSON 응답을 디코딩하고 응답 헤더를 반환합니다.
// 응답의 Content-Type에 선언된 문자셋을 존중하여 UTF-8로 변환 후 디코딩합니다.
func (c *Client) fetchJSON(ctx context.Context, requestURL string, v any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxResponseBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "응답 본문의 문자셋 변환에 실패했습니다")
	}

	if err := json.NewDecoder(reader).Decode(v); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "JSON 응답 디코딩에 실패했습니다")
	}

	return resp.Header, nil
}
