package forms

// Recalbox covers the main recalbox.conf options.
var Recalbox = Form{
	Name:     "config",
	Title:    "Recalbox configuration",
	TrueVal:  "1",
	FalseVal: "0",
	Fields: []Field{
		{Key: "system.language", Label: "Language", Kind: KindChoice, Default: "en_US",
			Choices: []string{"en_US", "en_GB", "fr_FR", "de_DE", "es_ES", "it_IT", "pt_BR", "pt_PT", "nl_NL", "sv_SE", "nb_NO", "pl_PL", "ru_RU", "zh_CN", "ja_JP"}},
		{Key: "system.kblayout", Label: "Keyboard layout", Kind: KindChoice, Default: "us",
			Choices: []string{"us", "gb", "fr", "de", "es", "it", "pt", "se", "no", "dk"}},
		{Key: "system.timezone", Label: "Timezone", Kind: KindString, Optional: true, Rules: "max=64,printascii"},
		{Key: "audio.device", Label: "Audio output", Kind: KindChoice, Default: "auto",
			Choices: []string{"auto", "hdmi", "jack"}},
		{Key: "audio.volume", Label: "Volume", Kind: KindInt, Default: "90", Rules: "min=0,max=100"},
		{Key: "audio.bgmusic", Label: "Background music", Kind: KindBool, Default: "1"},
		{Key: "wifi.enabled", Label: "Wi-Fi", Kind: KindBool, Default: "0"},
		{Key: "wifi.ssid", Label: "Wi-Fi SSID", Kind: KindString, Optional: true, Rules: "max=32"},
		{Key: "wifi.key", Label: "Wi-Fi key", Kind: KindString, Optional: true, Rules: "min=8,max=63"},
		{Key: "global.ratio", Label: "Screen ratio", Kind: KindChoice, Default: "auto",
			Choices: []string{"auto", "4/3", "16/9", "16/10", "custom"}},
		{Key: "global.smooth", Label: "Smooth games", Kind: KindBool, Default: "1"},
		{Key: "global.rewind", Label: "Rewind", Kind: KindBool, Default: "1"},
		{Key: "global.autosave", Label: "Auto save/load", Kind: KindBool, Default: "0"},
		{Key: "global.shaders", Label: "Shaders", Kind: KindChoice, Default: "none",
			Choices: []string{"none", "scanlines", "retro"}},
		{Key: "global.integerscale", Label: "Integer scale", Kind: KindBool, Default: "0"},
		{Key: "kodi.enabled", Label: "Kodi", Kind: KindBool, Default: "1"},
	},
}

// EmulationStation covers the es_settings.cfg front-end options.
var EmulationStation = Form{
	Name:     "configes",
	Title:    "EmulationStation configuration",
	TrueVal:  "true",
	FalseVal: "false",
	Fields: []Field{
		{Key: "ThemeSet", Label: "Theme", Kind: KindString, Default: "carbon", Rules: "max=64,printascii"},
		{Key: "TransitionStyle", Label: "Transition style", Kind: KindChoice, Default: "fade",
			Choices: []string{"fade", "slide", "instant"}},
		{Key: "ScreenSaverTime", Label: "Screensaver delay (ms)", Kind: KindInt, Default: "300000", Rules: "min=0,max=3600000"},
		{Key: "ScreenSaverBehavior", Label: "Screensaver", Kind: KindChoice, Default: "dim",
			Choices: []string{"dim", "black", "random video"}},
		{Key: "PowerSaverMode", Label: "Power saver", Kind: KindChoice, Default: "disabled",
			Choices: []string{"disabled", "default", "enhanced", "instant"}},
		{Key: "SaveGamelistsMode", Label: "Save gamelists", Kind: KindChoice, Default: "on exit",
			Choices: []string{"on exit", "always", "never"}},
		{Key: "ShowHelpPrompts", Label: "Help prompts", Kind: KindBool, Default: "true"},
		{Key: "EnableSounds", Label: "Navigation sounds", Kind: KindBool, Default: "true"},
		{Key: "ShowHiddenFiles", Label: "Show hidden files", Kind: KindBool, Default: "false"},
	},
}

// Audio covers the audio and system keys of the RetroArch configuration.
var Audio = Form{
	Name:     "configas",
	Title:    "Audio & system configuration",
	TrueVal:  "true",
	FalseVal: "false",
	Fields: []Field{
		{Key: "audio_enable", Label: "Audio", Kind: KindBool, Default: "true"},
		{Key: "audio_driver", Label: "Audio driver", Kind: KindChoice, Default: "alsathread",
			Choices: []string{"alsa", "alsathread", "pulse", "sdl2", "null"}},
		{Key: "audio_device", Label: "Audio device", Kind: KindString, Optional: true, Rules: "max=64,printascii"},
		{Key: "audio_volume", Label: "Volume gain (dB)", Kind: KindFloat, Default: "0.0", Rules: "min=-80,max=12"},
		{Key: "audio_latency", Label: "Audio latency (ms)", Kind: KindInt, Default: "64", Rules: "min=8,max=512"},
		{Key: "audio_sync", Label: "Audio sync", Kind: KindBool, Default: "true"},
		{Key: "video_fullscreen", Label: "Fullscreen", Kind: KindBool, Default: "true"},
		{Key: "video_vsync", Label: "VSync", Kind: KindBool, Default: "true"},
		{Key: "video_threaded", Label: "Threaded video", Kind: KindBool, Default: "false"},
		{Key: "fps_show", Label: "Show FPS", Kind: KindBool, Default: "false"},
	},
}
