package bip39

import (
	"strings"
	"testing"
)

func TestGenerateMnemonic(t *testing.T) {
	svc := NewMnemonicService()
	mnemonic, err := svc.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("生成助记词失败: %v", err)
	}
	if words := strings.Fields(mnemonic); len(words) != 12 {
		t.Errorf("期望 12 个单词, 实际 %d", len(words))
	}
	if !svc.ValidateMnemonic(mnemonic) {
		t.Errorf("生成的助记词校验失败")
	}
}

func TestMnemonicToSeed(t *testing.T) {
	svc := NewMnemonicService()
	const zemu = "equip will roof matter pink blind book anxiety banner elbow sun young"

	seed, err := svc.MnemonicToSeed(zemu, "")
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if len(seed) != 64 {
		t.Errorf("种子长度应为 64, 实际 %d", len(seed))
	}

	withPass, _ := svc.MnemonicToSeed(zemu, "TREZOR")
	if string(withPass) == string(seed) {
		t.Errorf("passphrase 不应被忽略")
	}

	if _, err := svc.MnemonicToSeed("equip will roof matter pink blind book anxiety banner elbow sun notaword", ""); err == nil {
		t.Errorf("包含非词表单词的助记词应该失败")
	}
}
