package bip39

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicService 提供助记词相关的功能
type MnemonicService struct{}

// NewMnemonicService 创建一个新的助记词服务实例
func NewMnemonicService() *MnemonicService {
	return &MnemonicService{}
}

// GenerateMnemonic 生成一个新的随机助记词 (BIP-39)。
// bitSize: 熵的位数，通常为 128 (12个单词) 或 256 (24个单词)。
func (s *MnemonicService) GenerateMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", fmt.Errorf("生成熵失败: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("生成助记词失败: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic 验证助记词是否有效。
func (s *MnemonicService) ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// MnemonicToSeed 将助记词转换为种子 (BIP-39 Seed)，会校验词表与校验和。
// password 为空表示不使用 passphrase。
func (s *MnemonicService) MnemonicToSeed(mnemonic string, password string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("无效的助记词: %w", err)
	}
	return seed, nil
}
