package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/shopping-feed-server/internal/config"
	"github.com/darkkaiser/shopping-feed-server/internal/pkg/version"
	"github.com/darkkaiser/shopping-feed-server/internal/service"
	"github.com/darkkaiser/shopping-feed-server/internal/service/api"
	"github.com/darkkaiser/shopping-feed-server/internal/service/feed"
	"github.com/darkkaiser/shopping-feed-server/internal/service/feed/shopify"
	"github.com/darkkaiser/shopping-feed-server/internal/service/notification"
	"github.com/darkkaiser/shopping-feed-server/internal/service/scheduler"
	applog "github.com/darkkaiser/shopping-feed-server/pkg/log"
	log "github.com/sirupsen/logrus"
)

// @title Shopping Feed Server API
// @version 1.0.0
// @description Shopify 상품 카탈로그를 구글 쇼핑 피드(CSV)로 변환하여 제공하는 서버의 REST API입니다.
// @description
// @description 이 API를 사용하면 구글 머천트 센터(Google Merchant Center)에 등록할 수 있는
// @description 쇼핑 피드를 HTTP로 다운로드할 수 있습니다.
// @description
// @description ## 주요 기능
// @description - 쇼핑몰 전체 상품 카탈로그 수집 (페이지네이션 자동 순회)
// @description - 구글 쇼핑 피드(CSV) 변환 및 다운로드
// @description - 피드 건전성 주기 점검 및 결과 알림 (Telegram)
// @description
// @description ## 피드 생성 정책
// @description 피드 생성은 부분 실패를 허용하지 않습니다. 카탈로그 수집 중 오류가 발생하면
// @description 불완전한 피드 대신 오류 응답이 반환됩니다.

// @termsOfService http://swagger.io/terms/

// @contact.name DarkKaiser
// @contact.url https://github.com/DarkKaiser
// @contact.email darkkaiser@gmail.com

// @license.name MIT
// @license.url https://github.com/DarkKaiser/shopping-feed-server/blob/master/LICENSE

// @host localhost:8888
// @BasePath /

const (
	banner = `
  ____  _                       _               _____             _
 / ___|| |__   ___  _ __  _ __ (_)_ __   __ _  |  ___|__  ___  __| |
 \___ \| '_ \ / _ \| '_ \| '_ \| | '_ \ / _` + "`" + ` | | |_ / _ \/ _ \/ _` + "`" + ` |
  ___) | | | | (_) | |_) | |_) | | | | | (_| | |  _|  __/  __/ (_| |
 |____/|_| |_|\___/| .__/| .__/|_|_| |_|\__, | |_|  \___|\___|\__,_|
                   |_|   |_|            |___/    ____
                                                / ___|  ___ _ ____   _____ _ __
                                                \___ \ / _ \ '__\ \ / / _ \ '__|
                                                 ___) |  __/ |   \ V /  __/ |
                                                |____/ \___|_|    \_/ \___|_|
                                                                 %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	// 빌드 정보는 컴파일 시점에 링커 플래그(ldflags)로 version 패키지에 주입된다.
	buildInfo := version.Get()

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, buildInfo.Version)

	// 빌드 정보 출력
	applog.WithComponentAndFields("main", log.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 설정 권고사항 점검 (경고일 뿐 서버 구동은 계속된다)
	for _, recommendation := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(recommendation)
	}

	// 스케줄러의 피드 검증 작업에서 사용할 피드 생성 파이프라인을 구성한다.
	shopifyClient := shopify.NewClient(&appConfig.Shopify)
	feedGenerator := feed.NewGenerator(shopifyClient, &appConfig.Feed)

	// 서비스를 생성하고 초기화한다.
	notificationService := notification.NewService(appConfig)
	apiService := api.NewService(appConfig, notificationService, buildInfo)
	schedulerService := scheduler.NewService(&appConfig.Scheduler, feedGenerator, notificationService)

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []service.Service{notificationService, apiService, schedulerService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}
