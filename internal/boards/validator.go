package boards

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"

	models "github.com/CodeAndHammer/parludo/internal/models"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

// FieldsError maps JSON field names to human readable problems.
type FieldsError struct {
	Fields map[string]string
}

func NewFieldsError(fields map[string]string) *FieldsError {
	return &FieldsError{Fields: fields}
}

func (f *FieldsError) Error() string {
	keys := lo.Keys(f.Fields)
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f.Fields[k]))
	}
	return "invalid board: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator builds the board validator with English messages for the
// built-in tags and the board-level rules.
func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(boardStructLevel, models.Board{})
	for tag, text := range boardMessages {
		if err := registerMessage(v, trans, tag, text); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: v, trans: trans}, nil
}

var boardMessages = map[string]string{
	"enoughpairs": "{0} must hold at least half as many pairs as cardCount",
	"uniquepairs": "{0} must have unique ids",
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) error {
	err := v.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, err := ut.T(tag, fe.Field())
		if err != nil {
			util.LogWarn("Failed to translate %q for %s: %v", tag, fe.Field(), err)
			return fe.Error()
		}
		return t
	})
	if err != nil {
		return fmt.Errorf("register %s translation: %w", tag, err)
	}
	return nil
}

// boardStructLevel checks the rules that span fields: a board needs
// cardCount/2 pairs to deal from and its pair ids must be distinct.
func boardStructLevel(sl validator.StructLevel) {
	board := sl.Current().Interface().(models.Board)
	if len(board.Pairs) < board.CardCount/2 {
		sl.ReportError(board.Pairs, "pairs", "Pairs", "enoughpairs", "")
	}
	seen := make(map[string]struct{}, len(board.Pairs))
	for _, p := range board.Pairs {
		if _, dup := seen[p.ID]; dup {
			sl.ReportError(board.Pairs, "pairs", "Pairs", "uniquepairs", "")
			return
		}
		seen[p.ID] = struct{}{}
	}
}

// Validate returns nil or a *FieldsError describing every problem.
func (v *Validator) Validate(board models.Board) error {
	err := v.validate.Struct(board)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		key := strings.TrimPrefix(e.Namespace(), "Board.")
		fields[key] = e.Translate(v.trans)
	}
	return NewFieldsError(fields)
}
