package service

import (
	"encoding/json"
	"log"
	"sort"

	"marketsync_v1_202608/internal/syncerr"
)

// ==================== 凭证存取 ====================

// Credential 单个卖家在某平台上的凭证，令牌对在运行期可变
type Credential struct {
	Seller       string `json:"-"`
	SellerID     string `json:"seller_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CredentialStore 平台级的卖家凭证表，由环境变量中的 JSON 一次性装载
// 装载后令牌的变更只发生在内存里，不回写环境
type CredentialStore struct {
	platform string
	creds    map[string]*Credential
}

// NewCredentialStore 解析形如 {"vendedor": {"access_token": ...}} 的 JSON
// JSON 缺失或畸形不视为致命错误，得到空表，后续按卖家报鉴权错误
func NewCredentialStore(platform, tokensJSON string) *CredentialStore {
	store := &CredentialStore{platform: platform, creds: make(map[string]*Credential)}

	if tokensJSON == "" {
		log.Printf("[Credential] 平台 %s 未配置卖家令牌", platform)
		return store
	}

	var raw map[string]*Credential
	if err := json.Unmarshal([]byte(tokensJSON), &raw); err != nil {
		log.Printf("[Credential] 平台 %s 令牌 JSON 解析失败: %v", platform, err)
		return store
	}

	for seller, cred := range raw {
		cred.Seller = seller
		store.creds[seller] = cred
	}
	log.Printf("[Credential] 平台 %s 装载 %d 个卖家", platform, len(store.creds))
	return store
}

// Get 按卖家取凭证，未配置返回 ErrSellerNotFound
func (s *CredentialStore) Get(seller string) (*Credential, error) {
	cred, ok := s.creds[seller]
	if !ok {
		return nil, syncerr.ErrSellerNotFound
	}
	return cred, nil
}

// Sellers 返回全部已配置卖家，按名称排序保证遍历顺序稳定
func (s *CredentialStore) Sellers() []string {
	sellers := make([]string, 0, len(s.creds))
	for seller := range s.creds {
		sellers = append(sellers, seller)
	}
	sort.Strings(sellers)
	return sellers
}

// Platform 所属平台标识
func (s *CredentialStore) Platform() string {
	return s.platform
}
