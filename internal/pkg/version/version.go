// Package version 애플리케이션의 빌드 및 버저닝 정보를 관리하는 패키지입니다.
//
// 빌드 시점(Build-Time)에 링커 플래그(-ldflags)로 주입된 메타데이터와
// 실행 시점(Run-Time)의 환경 정보(Go 버전, OS, 아키텍처)를 통합하여 제공합니다.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
)

const unknown = "unknown"

// globalBuildInfo 전역 빌드 정보 (Atomic Value를 사용하여 Thread-Safe 보장)
var globalBuildInfo atomic.Value

// 다음 변수들은 Dockerfile에서 컴파일 시점에 링커 플래그(ldflags)를 통해 주입됩니다.
// 애플리케이션 로직에서는 직접 접근하지 말고 반드시 Get()을 통해 접근해야 합니다.
var (
	appVersion  = "" // 애플리케이션 버전 (예: v1.2.0-12-g3ab41ce)
	buildDate   = "" // 빌드 수행 시간
	buildNumber = "" // CI/CD 파이프라인 빌드 번호
)

func init() {
	set(enrichBuildInfo(Info{
		Version:     strings.TrimSpace(appVersion),
		BuildDate:   strings.TrimSpace(buildDate),
		BuildNumber: strings.TrimSpace(buildNumber),
	}))
}

// Info 애플리케이션의 빌드 정보를 담고 있습니다.
// 주로 /version API 엔드포인트나 로그 출력에 사용됩니다.
type Info struct {
	Version     string `json:"version"`      // 애플리케이션의 버전
	BuildDate   string `json:"build_date"`   // 빌드 날짜 (ISO 8601 형식 권장)
	BuildNumber string `json:"build_number"` // CI/CD 빌드 번호
	GoVersion   string `json:"go_version"`   // 빌드에 사용된 Go 컴파일러 버전
	OS          string `json:"os"`           // 실행 중인 운영체제
	Arch        string `json:"arch"`         // 실행 중인 시스템 아키텍처
}

// Get 애플리케이션의 빌드 정보를 반환합니다.
func Get() Info {
	bi := globalBuildInfo.Load()
	if bi == nil {
		return Info{
			Version:     unknown,
			BuildDate:   unknown,
			BuildNumber: "0",
		}
	}
	return bi.(Info)
}

// set 애플리케이션의 빌드 정보를 설정합니다.
func set(bi Info) {
	globalBuildInfo.Store(bi)
}

// enrichBuildInfo 초기화되지 않은 빌드 정보에 런타임 환경 값과 기본값을 채워 넣습니다.
// 순수 함수로 설계되어 단위 테스트가 용이합니다.
func enrichBuildInfo(bi Info) Info {
	if bi.GoVersion == "" {
		bi.GoVersion = runtime.Version()
	}
	if bi.OS == "" {
		bi.OS = runtime.GOOS
	}
	if bi.Arch == "" {
		bi.Arch = runtime.GOARCH
	}

	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.BuildDate == "" {
		bi.BuildDate = unknown
	}
	if bi.BuildNumber == "" {
		bi.BuildNumber = "0"
	}

	return bi
}

// String 빌드 정보를 사람이 읽기 쉬운 하나의 문자열로 요약해 반환합니다.
func (i Info) String() string {
	if i.Version == "" {
		return unknown
	}

	var details []string

	if i.BuildNumber != "" {
		details = append(details, fmt.Sprintf("build: %s", i.BuildNumber))
	}
	if i.BuildDate != "" && i.BuildDate != unknown {
		details = append(details, fmt.Sprintf("date: %s", i.BuildDate))
	}
	if i.GoVersion != "" {
		details = append(details, fmt.Sprintf("go_version: %s", i.GoVersion))
	}
	if i.OS != "" && i.Arch != "" {
		details = append(details, fmt.Sprintf("os/arch: %s/%s", i.OS, i.Arch))
	}

	if len(details) == 0 {
		return i.Version
	}

	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(details, ", "))
}
