package asm

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shepheb/asm24/core"
)

// The file suffixes of the pipeline: .as in, .am after macro expansion, and
// the three artifacts of a clean run.
const (
	srcSuffix       = ".as"
	expandedSuffix  = ".am"
	objectSuffix    = ".ob"
	externalsSuffix = ".ext"
	entriesSuffix   = ".ent"
)

// AssembleFile runs the whole pipeline for one base name: pre-process
// BASE.as into BASE.am, run both passes, and, only when no diagnostics were
// recorded anywhere, write BASE.ob plus the conditional BASE.ext and
// BASE.ent.
//
// The bool reports whether the file was clean. A non-nil error is an I/O
// failure (unreadable source, unwritable artifact), which callers treat as
// fatal; diagnostics are logged here and reported only through the bool, so
// one bad file does not stop a multi-file run.
func AssembleFile(base string) (bool, error) {
	logrus.Infof("processing %s%s", base, srcSuffix)
	errs := core.NewErrorList(base)

	macros, err := preprocessFile(base, errs)
	if err != nil {
		return false, err
	}

	// The passes still run on a file with pre-processor diagnostics, to
	// surface as much as possible in one go. Only artifact emission is
	// gated on a clean run.
	s := newState(macros, errs)
	icf, dcf, err := firstPassFile(base, s)
	if err != nil {
		return false, err
	}
	runSecond(s)

	if !errs.OK() {
		for _, e := range errs.All() {
			logrus.Error(e)
		}
		logrus.Errorf("errors in the input file %s%s, not generating its output files", base, srcSuffix)
		return false, nil
	}

	if err := writeArtifacts(base, s, icf, dcf); err != nil {
		return false, err
	}
	logrus.Infof("no errors in the input file %s%s, output files generated", base, srcSuffix)
	return true, nil
}

// preprocessFile expands BASE.as into BASE.am. The .am file is written even
// when the expansion had diagnostics, so the expansion can still be
// inspected.
func preprocessFile(base string, errs *core.ErrorList) (*MacroTable, error) {
	src, err := os.Open(base + srcSuffix)
	if err != nil {
		return nil, errors.Wrap(err, "opening source file")
	}
	defer src.Close()

	dst, err := os.Create(base + expandedSuffix)
	if err != nil {
		return nil, errors.Wrap(err, "creating expanded file")
	}

	macros, werr := Preprocess(src, dst, errs)
	cerr := dst.Close()
	if werr != nil {
		return nil, errors.Wrap(werr, "writing expanded file")
	}
	if cerr != nil {
		return nil, errors.Wrap(cerr, "writing expanded file")
	}
	return macros, nil
}

func firstPassFile(base string, s *state) (icf, dcf uint32, err error) {
	src, err := os.Open(base + expandedSuffix)
	if err != nil {
		return 0, 0, errors.Wrap(err, "opening expanded file")
	}
	defer src.Close()

	icf, dcf = runFirst(src, s)
	return icf, dcf, nil
}

func writeArtifacts(base string, s *state, icf, dcf uint32) error {
	if err := writeFile(base+objectSuffix, func(f *os.File) error {
		return writeObject(f, s.code, s.data, icf, dcf)
	}); err != nil {
		return err
	}

	if hasExternals(s.symbols) {
		if err := writeFile(base+externalsSuffix, func(f *os.File) error {
			return writeExternals(f, s.symbols)
		}); err != nil {
			return err
		}
	}

	if hasEntries(s.symbols) {
		if err := writeFile(base+entriesSuffix, func(f *os.File) error {
			return writeEntries(f, s.symbols)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, fill func(*os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	if err := fill(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	return nil
}
