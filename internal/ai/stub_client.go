package ai

import (
	"context"
	"encoding/base64"
)

// StubResultText фиксированный ответ заглушки.
const StubResultText = "【クラシック・ラウンドメタル】細身のメタルフレームに丸みのあるレンズを合わせ、知的でやわらかな印象を両立。仕事にも日常にも自然になじむ一本です。"

const stubImageSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="256" height="256" viewBox="0 0 256 256">` +
	`<rect width="256" height="256" fill="#fff"/>` +
	`<circle cx="84" cy="128" r="44" fill="none" stroke="#222" stroke-width="6"/>` +
	`<circle cx="172" cy="128" r="44" fill="none" stroke="#222" stroke-width="6"/>` +
	`<path d="M128 128 q0 -12 0 0" stroke="#222" stroke-width="6"/></svg>`

// StubImageURL data URL, которую отдаёт заглушка.
var StubImageURL = "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(stubImageSVG))

// StubClient заглушка, которая не делает реальных запросов
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) GenerateText(ctx context.Context, _ string) (string, error) {
	if err := context.Cause(ctx); err != nil {
		return "", err
	}
	return StubResultText, nil
}

func (c *StubClient) GenerateImage(ctx context.Context, _ string) (string, error) {
	if err := context.Cause(ctx); err != nil {
		return "", err
	}
	return StubImageURL, nil
}
