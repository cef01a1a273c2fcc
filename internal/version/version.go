package version

const VERSION = "v0.1.0"

const UPDATE_MESSAGE = "New features may include better touchpad detection and fixes for hotkey handling."
