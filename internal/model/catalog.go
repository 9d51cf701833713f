package model

// CatalogItem 可选项
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog 支持的模型与绘图参数
type Catalog struct {
	ImageModels  []CatalogItem `json:"imageModels"`
	ChatModels   []CatalogItem `json:"chatModels"`
	AspectRatios []CatalogItem `json:"aspectRatios"`
	ImageSizes   []CatalogItem `json:"imageSizes"`
}

// DefaultCatalog 内置目录
func DefaultCatalog() Catalog {
	return Catalog{
		ImageModels: []CatalogItem{
			{ID: "nano-banana-fast", Name: "Nano Banana Fast", Description: "快速生成，适合简单场景"},
			{ID: "nano-banana", Name: "Nano Banana", Description: "标准模型，平衡速度和质量"},
			{ID: "nano-banana-pro", Name: "Nano Banana Pro", Description: "专业模型，支持高分辨率"},
			{ID: "nano-banana-pro-vt", Name: "Nano Banana Pro VT", Description: "专业视觉思考模型"},
		},
		ChatModels: []CatalogItem{
			{ID: "nano-banana-pro", Name: "Nano Banana Pro", Description: "专业对话模型"},
			{ID: "nano-banana-pro-vt", Name: "Nano Banana Pro VT", Description: "专业视觉思考模型"},
			{ID: "nano-banana-fast", Name: "Nano Banana Fast", Description: "快速对话模型"},
			{ID: "nano-banana", Name: "Nano Banana", Description: "标准对话模型"},
			{ID: "gemini-3-pro", Name: "Gemini 3 Pro", Description: "Google Gemini 3 Pro"},
			{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Description: "Google Gemini 2.5 Pro"},
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Google Gemini 2.5 Flash"},
			{ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash Lite", Description: "轻量级Gemini模型"},
		},
		AspectRatios: []CatalogItem{
			{ID: "auto", Name: "自动", Description: "根据提示词自动选择"},
			{ID: "1:1", Name: "1:1", Description: "正方形"},
			{ID: "16:9", Name: "16:9", Description: "宽屏"},
			{ID: "9:16", Name: "9:16", Description: "竖屏"},
			{ID: "4:3", Name: "4:3", Description: "传统比例"},
			{ID: "3:4", Name: "3:4", Description: "传统竖屏"},
			{ID: "3:2", Name: "3:2", Description: "照片比例"},
			{ID: "2:3", Name: "2:3", Description: "照片竖屏"},
			{ID: "5:4", Name: "5:4", Description: "特殊比例"},
			{ID: "4:5", Name: "4:5", Description: "特殊竖屏"},
			{ID: "21:9", Name: "21:9", Description: "超宽屏"},
		},
		ImageSizes: []CatalogItem{
			{ID: "1K", Name: "1K", Description: "标准分辨率"},
			{ID: "2K", Name: "2K", Description: "高清分辨率"},
			{ID: "4K", Name: "4K", Description: "超高清分辨率"},
		},
	}
}
