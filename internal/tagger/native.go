package tagger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
	"github.com/oshokin/hifi-grabber/internal/utils"
)

// coverMIMEType is the type of every cover written to the library.
const coverMIMEType = utils.ImageJPEGMimeType

// NativeTagger copies the input and writes tags in-process:
// Vorbis comments and a picture block for FLAC, ID3v2 frames for MP3.
type NativeTagger struct {
	timeout time.Duration
}

// NewNativeTagger creates an in-process tagger.
func NewNativeTagger(timeout time.Duration) *NativeTagger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &NativeTagger{timeout: timeout}
}

// Tag copies the input to the output and writes the metadata into the copy.
// The deadline is checked between steps since in-process writes cannot be interrupted.
func (t *NativeTagger) Tag(ctx context.Context, req *Request) (err error) {
	if err = req.validate(); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	defer func() {
		if err == nil {
			return
		}

		removePartialOutput(ctx, req.OutputPath)

		switch {
		case ctx.Err() != nil:
			err = fmt.Errorf("%w: %w", ErrTaggingFailed, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("%w after %s", ErrTaggingTimeout, t.timeout)
		default:
			err = fmt.Errorf("%w: %w", ErrTaggingFailed, err)
		}
	}()

	if _, err = utils.CopyFile(req.InputPath, req.OutputPath); err != nil {
		return err
	}

	var cover []byte

	if req.hasCover() {
		cover, err = os.ReadFile(filepath.Clean(req.CoverPath))
		if err != nil {
			return err
		}
	}

	if err = runCtx.Err(); err != nil {
		return err
	}

	if req.Quality.Container() == model.ContainerMP3 {
		err = t.writeMP3Tags(req, cover)
	} else {
		err = t.writeFLACTags(ctx, req, cover)
	}

	if err != nil {
		return err
	}

	return runCtx.Err()
}

func (t *NativeTagger) writeFLACTags(ctx context.Context, req *Request, cover []byte) error {
	f, err := flac.ParseFile(filepath.Clean(req.OutputPath))
	if err != nil {
		return err
	}

	comment := flacvorbis.New()
	meta := make([]*flac.MetaDataBlock, 0, len(f.Meta)+2)

	// Existing comments and pictures are replaced, everything else is kept.
	for _, block := range f.Meta {
		if block.Type == flac.VorbisComment || block.Type == flac.Picture {
			continue
		}

		meta = append(meta, block)
	}

	if req.Metadata != nil {
		for _, field := range flacFields(req.Metadata) {
			if err = comment.Add(field.Key, field.Value); err != nil {
				return err
			}
		}
	}

	commentBlock := comment.Marshal()
	meta = append(meta, &commentBlock)

	if len(cover) > 0 {
		picture, pictureErr := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover (front)", cover, coverMIMEType)
		if pictureErr != nil {
			logger.Warnf(ctx, "Failed to embed cover into %s: %v", req.OutputPath, pictureErr)
		} else {
			pictureBlock := picture.Marshal()
			meta = append(meta, &pictureBlock)
		}
	}

	f.Meta = meta

	return f.Save(req.OutputPath)
}

func flacFields(m *Metadata) []Field {
	candidates := []Field{
		{Key: "TITLE", Value: m.Title},
		{Key: "ARTIST", Value: m.Artist},
		{Key: "ALBUM", Value: m.Album},
		{Key: "ALBUMARTIST", Value: m.AlbumArtist},
		{Key: "TRACKNUMBER", Value: m.TrackNumber},
		{Key: "DISCNUMBER", Value: m.DiscNumber},
		{Key: "TOTALTRACKS", Value: m.TotalTracks},
		{Key: "GENRE", Value: m.Genre},
		{Key: "ORGANIZATION", Value: m.Label},
		{Key: "DATE", Value: m.Year},
		{Key: "COMMENT", Value: m.Comment},
	}

	fields := make([]Field, 0, len(candidates))

	for _, f := range candidates {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}

	return fields
}

func (t *NativeTagger) writeMP3Tags(req *Request, cover []byte) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.OutputPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if m := req.Metadata; m != nil {
		setMP3Text(tag, "Title/Songname/Content description", m.Title)
		setMP3Text(tag, "Lead artist/Lead performer/Soloist/Performing group", m.Artist)
		setMP3Text(tag, "Album/Movie/Show title", m.Album)
		setMP3Text(tag, "Band/Orchestra/Accompaniment", m.AlbumArtist)
		setMP3Text(tag, "Part of a set", m.DiscNumber)
		setMP3Text(tag, "Content type", m.Genre)
		setMP3Text(tag, "Publisher", m.Label)

		if m.Year != "" {
			tag.SetYear(m.Year)
		}

		trackNumber := m.TrackNumber
		if trackNumber != "" && m.TotalTracks != "" {
			trackNumber += "/" + m.TotalTracks
		}

		setMP3Text(tag, "Track number/Position in set", trackNumber)

		if m.Comment != "" {
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    id3v2.EnglishISO6392Code,
				Description: "",
				Text:        m.Comment,
			})
		}
	}

	if len(cover) > 0 {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    coverMIMEType,
			PictureType: id3v2.PTFrontCover,
			Picture:     cover,
		})
	}

	return tag.Save()
}

func setMP3Text(tag *id3v2.Tag, description, value string) {
	if value == "" {
		return
	}

	tag.AddTextFrame(tag.CommonID(description), tag.DefaultEncoding(), value)
}
