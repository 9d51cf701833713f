package service

import (
	"context"
	"errors"
	"strings"

	"github.com/JackaZhai/nano-banana/config"
	"github.com/JackaZhai/nano-banana/internal/model"
	"github.com/JackaZhai/nano-banana/internal/pkg/secret"
	"github.com/JackaZhai/nano-banana/internal/repository"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// APIKeyService API Key 服务接口
type APIKeyService interface {
	// Bootstrap 写入环境变量中的 Key，并在没有激活项时激活第一个
	Bootstrap(ctx context.Context) error

	// List 返回脱敏后的 Key 列表
	List(ctx context.Context) (*KeyStore, error)

	// Add 新增 Key 并设为激活
	Add(ctx context.Context, req *KeyRequest) (*KeyStore, error)

	// Delete 删除 Key
	Delete(ctx context.Context, id string) (*KeyStore, error)

	// SetActive 切换激活的 Key
	SetActive(ctx context.Context, id string) (*KeyStore, error)

	// ActiveValue 当前激活 Key 的明文，没有时回退到配置中的 Key
	ActiveValue(ctx context.Context) (string, error)

	// RequireActiveValue 同 ActiveValue，但 Key 为空时返回 400
	RequireActiveValue(ctx context.Context) (string, error)

	// TestKey 校验 Key 是否可用，value 为空时校验当前激活的 Key
	TestKey(ctx context.Context, value string) (*KeyTestResult, error)
}

// KeyStore Key 列表响应
type KeyStore struct {
	ActiveID string    `json:"activeId"`
	HasKey   bool      `json:"hasKey"`
	Keys     []KeyView `json:"keys"`
}

// KeyView 单个 Key 的脱敏视图
type KeyView struct {
	ID       string             `json:"id"`
	Mask     string             `json:"mask"`
	Source   model.APIKeySource `json:"source"`
	IsActive bool               `json:"isActive"`
}

// KeyTestResult Key 校验结果
type KeyTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type keyTester interface {
	TestKey(ctx context.Context, apiKey string) error
}

// decryptedKey 解密后的 Key
type decryptedKey struct {
	id       string
	value    string
	source   model.APIKeySource
	isActive bool
}

type apiKeyService struct {
	cfg       *config.Config
	repo      repository.APIKeyRepository
	box       *secret.Box
	tester    keyTester
	validator *Validator
}

// NewAPIKeyService 创建 API Key 服务
func NewAPIKeyService(cfg *config.Config, repo repository.APIKeyRepository, box *secret.Box, tester keyTester, validator *Validator) APIKeyService {
	return &apiKeyService{cfg: cfg, repo: repo, box: box, tester: tester, validator: validator}
}

// decryptedKeys 解密全部 Key，无法解密的记录被跳过
func (s *apiKeyService) decryptedKeys(ctx context.Context) ([]decryptedKey, string, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, "", err
	}
	result := make([]decryptedKey, 0, len(keys))
	activeID := ""
	for _, k := range keys {
		value := s.box.Decrypt(k.Value)
		if value == "" {
			klog.Warningf("API Key 解密失败，已跳过: id=%s", k.ID)
			continue
		}
		result = append(result, decryptedKey{id: k.ID, value: value, source: k.Source, isActive: k.IsActive})
		if k.IsActive {
			activeID = k.ID
		}
	}
	return result, activeID, nil
}

// Bootstrap 写入环境变量中的 Key，并在没有激活项时激活第一个
func (s *apiKeyService) Bootstrap(ctx context.Context) error {
	keys, activeID, err := s.decryptedKeys(ctx)
	if err != nil {
		klog.Errorf("Bootstrap: failed to list API Keys: %v", err)
		return err
	}

	envKey := strings.TrimSpace(s.cfg.Upstream.APIKey)
	if envKey != "" && !containsValue(keys, envKey) {
		id, err := s.create(ctx, envKey, model.APIKeySourceEnv, false)
		if err != nil {
			return err
		}
		keys = append(keys, decryptedKey{id: id, value: envKey, source: model.APIKeySourceEnv})
		klog.V(6).Infof("Bootstrap: seeded env API Key id=%s", id)
	}

	if activeID == "" && len(keys) > 0 {
		if err := s.repo.SetActive(ctx, keys[0].id); err != nil {
			klog.Errorf("Bootstrap: failed to activate API Key: %v", err)
			return err
		}
		klog.V(6).Infof("Bootstrap: activated API Key id=%s", keys[0].id)
	}
	return nil
}

// List 返回脱敏后的 Key 列表
func (s *apiKeyService) List(ctx context.Context) (*KeyStore, error) {
	if err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return s.serialize(ctx)
}

func (s *apiKeyService) serialize(ctx context.Context) (*KeyStore, error) {
	keys, activeID, err := s.decryptedKeys(ctx)
	if err != nil {
		return nil, err
	}
	activeValue := s.cfg.Upstream.APIKey
	views := make([]KeyView, 0, len(keys))
	for _, k := range keys {
		if k.isActive {
			activeValue = k.value
		}
		views = append(views, KeyView{
			ID:       k.id,
			Mask:     secret.Mask(k.value),
			Source:   k.source,
			IsActive: k.isActive,
		})
	}
	return &KeyStore{ActiveID: activeID, HasKey: activeValue != "", Keys: views}, nil
}

// Add 新增 Key 并设为激活
func (s *apiKeyService) Add(ctx context.Context, req *KeyRequest) (*KeyStore, error) {
	if err := s.validator.ValidateKey(req); err != nil {
		return nil, err
	}
	value := strings.TrimSpace(req.Value)

	keys, _, err := s.decryptedKeys(ctx)
	if err != nil {
		return nil, err
	}
	if containsValue(keys, value) {
		klog.Warningf("Add: API Key already exists")
		return nil, NewValidationError("Api key 已存在")
	}

	id, err := s.create(ctx, value, model.APIKeySourceCustom, true)
	if err != nil {
		return nil, err
	}
	klog.V(6).Infof("Add: created API Key id=%s", id)
	return s.serialize(ctx)
}

func (s *apiKeyService) create(ctx context.Context, value string, source model.APIKeySource, active bool) (string, error) {
	encrypted, err := s.box.Encrypt(value)
	if err != nil {
		klog.Errorf("failed to encrypt API Key: %v", err)
		return "", err
	}
	key := &model.APIKey{
		ID:       strings.ReplaceAll(uuid.NewString(), "-", ""),
		Value:    encrypted,
		Source:   source,
		IsActive: active,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		klog.Errorf("failed to create API Key: %v", err)
		return "", err
	}
	return key.ID, nil
}

// Delete 删除 Key
func (s *apiKeyService) Delete(ctx context.Context, id string) (*KeyStore, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, NewNotFoundError("未找到对应的 Api key")
		}
		klog.Errorf("Delete: failed to delete API Key: %v", err)
		return nil, err
	}
	klog.V(6).Infof("Delete: deleted API Key id=%s", id)
	return s.serialize(ctx)
}

// SetActive 切换激活的 Key
func (s *apiKeyService) SetActive(ctx context.Context, id string) (*KeyStore, error) {
	id = strings.TrimSpace(id)
	if err := s.repo.SetActive(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, NewValidationError("无效的 Api key")
		}
		klog.Errorf("SetActive: failed: %v", err)
		return nil, err
	}
	klog.V(6).Infof("SetActive: activated API Key id=%s", id)
	return s.serialize(ctx)
}

// ActiveValue 当前激活 Key 的明文
func (s *apiKeyService) ActiveValue(ctx context.Context) (string, error) {
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return s.cfg.Upstream.APIKey, nil
		}
		return "", err
	}
	if value := s.box.Decrypt(active.Value); value != "" {
		return value, nil
	}
	return s.cfg.Upstream.APIKey, nil
}

// RequireActiveValue Key 为空时返回 400
func (s *apiKeyService) RequireActiveValue(ctx context.Context) (string, error) {
	value, err := s.ActiveValue(ctx)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", NewValidationError("Missing API key. 请在页面 Api key 管理中添加。")
	}
	return value, nil
}

// TestKey 校验 Key 是否可用
func (s *apiKeyService) TestKey(ctx context.Context, value string) (*KeyTestResult, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		var err error
		if value, err = s.RequireActiveValue(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.tester.TestKey(ctx, value); err != nil {
		klog.V(6).Infof("TestKey: key %s rejected: %v", secret.Mask(value), err)
		return &KeyTestResult{Success: false, Message: err.Error()}, nil
	}
	return &KeyTestResult{Success: true, Message: "Api key 可用"}, nil
}

func containsValue(keys []decryptedKey, value string) bool {
	return slice.ContainBy(keys, func(k decryptedKey) bool {
		return k.value == value
	})
}
