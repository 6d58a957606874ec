package config

// DefaultClippingsPath is the clippings file name as Kindle devices
// export it, resolved relative to the working directory.
const DefaultClippingsPath = "My Clippings.txt"
