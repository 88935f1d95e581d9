package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
)

func TestCaptchaDisabledSkipsVerification(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Provider: "none", Scenes: config.CaptchaSceneConfig{Login: true}})
	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("provider none should skip captcha, got %v", err)
	}
	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("want ErrCaptchaConfigInvalid got %v", err)
	}
}

func TestCaptchaImageVerifyOnce(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{
		Provider: constants.CaptchaProviderImage,
		Scenes:   config.CaptchaSceneConfig{Login: true},
	})
	if svc.SceneEnabled(constants.CaptchaSceneRegister) {
		t.Fatalf("register scene should stay disabled")
	}

	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate challenge failed: %v", err)
	}
	if challenge.CaptchaID == "" || challenge.ImageBase64 == "" {
		t.Fatalf("challenge should carry id and image")
	}
	answer := svc.imageStore().Get(challenge.CaptchaID, false)

	if err := svc.Verify(constants.CaptchaSceneLogin, CaptchaVerifyPayload{}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("empty payload want ErrCaptchaRequired got %v", err)
	}
	payload := CaptchaVerifyPayload{CaptchaID: challenge.CaptchaID, CaptchaCode: answer}
	if err := svc.Verify(constants.CaptchaSceneLogin, payload); err != nil {
		t.Fatalf("correct answer should pass, got %v", err)
	}
	if err := svc.Verify(constants.CaptchaSceneLogin, payload); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("answer should be single use, want ErrCaptchaInvalid got %v", err)
	}
}
