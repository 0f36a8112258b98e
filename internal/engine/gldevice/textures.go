package gldevice

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-water/internal/engine/texture"
	"github.com/Faultbox/midgard-water/internal/engine/water"
	"github.com/Faultbox/midgard-water/internal/logger"
)

const (
	maxFrames      = 32
	generatedSize  = 128
	generatedBumps = 16
	skySize        = 64
)

// LoadTextures uploads the water textures. Diffuse and bump frames come
// from dir when present and are generated otherwise.
func LoadTextures(dir string) water.Textures {
	log := logger.Named("gl")

	var diffuse, bumps []*image.RGBA
	if dir != "" {
		var err error
		if diffuse, err = texture.LoadFrames(dir, "water%03d", maxFrames); err != nil {
			log.Warn("Failed to load water textures", zap.String("dir", dir), zap.Error(err))
		}
		if bumps, err = texture.LoadFrames(dir, "bump%03d", maxFrames); err != nil {
			log.Warn("Failed to load bump textures", zap.String("dir", dir), zap.Error(err))
		}
	}
	if len(diffuse) == 0 {
		diffuse = []*image.RGBA{texture.WaterDiffuse(generatedSize)}
	}
	if len(bumps) == 0 {
		bumps = texture.BumpFrames(generatedSize, generatedBumps)
	}

	t := water.Textures{
		Diffuse:     upload2D(diffuse[0]),
		Environment: uploadCube(texture.SkyCube(skySize)),
	}
	for _, img := range bumps {
		t.Bump = append(t.Bump, upload2D(img))
	}

	log.Info("Water textures loaded",
		zap.Int("diffuseFrames", len(diffuse)),
		zap.Int("bumpFrames", len(t.Bump)),
	)
	return t
}

// DeleteTextures frees textures returned by LoadTextures.
func DeleteTextures(t water.Textures) {
	ids := []uint32{uint32(t.Diffuse), uint32(t.Environment)}
	for _, b := range t.Bump {
		ids = append(ids, uint32(b))
	}
	for _, id := range ids {
		if id != 0 {
			gl.DeleteTextures(1, &id)
		}
	}
}

func upload2D(img *image.RGBA) water.Texture {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.GENERATE_MIPMAP, gl.TRUE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return water.Texture(id)
}

func uploadCube(faces [texture.CubeFaces]*image.RGBA) water.Texture {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, img := range faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
			int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
			0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return water.Texture(id)
}
